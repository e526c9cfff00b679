package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eaglebank/mcp-banking/shared/middleware"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/gin-gonic/gin"
)

// ---- helpers ----

var testUser = &models.User{ID: 1, Username: "john_doe", Email: "john@example.com", IsActive: true}

func fakeAuth(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			middleware.SetCurrentUser(c, user)
		}
		c.Next()
	}
}

func newTestRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(user))
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		var payload string
		if s, ok := body.(string); ok {
			payload = s
		} else {
			b, _ := json.Marshal(body)
			payload = string(b)
		}
		req, _ = http.NewRequest(method, url, strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return body
}
