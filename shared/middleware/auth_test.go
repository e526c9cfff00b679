package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/auth"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/gin-gonic/gin"
)

type mockUserLookup struct {
	users map[string]*models.User
}

func (m *mockUserLookup) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("get user: %w", apperrors.ErrNotFound)
}

func newTestAuthenticator(t *testing.T) (*Authenticator, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", 30*time.Minute)
	users := &mockUserLookup{users: map[string]*models.User{
		"john_doe":   {ID: 1, Username: "john_doe", IsActive: true},
		"jane_smith": {ID: 2, Username: "jane_smith", IsActive: true},
		"inactive":   {ID: 3, Username: "inactive", IsActive: false},
	}}
	return NewAuthenticator(tokens, users, "access_token"), tokens
}

func mustIssue(t *testing.T, tokens *auth.TokenManager, subject string) string {
	t.Helper()
	token, _, err := tokens.Issue(subject)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestResolve(t *testing.T) {
	authn, tokens := newTestAuthenticator(t)
	john := mustIssue(t, tokens, "john_doe")
	jane := mustIssue(t, tokens, "jane_smith")
	expired, _, err := tokens.IssueWithExpiry("jane_smith", -time.Minute)
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		cookie   string
		wantUser string
	}{
		{name: "bearer header", header: "Bearer " + john, wantUser: "john_doe"},
		{name: "cookie only", cookie: john, wantUser: "john_doe"},
		{name: "header wins over cookie", header: "Bearer " + jane, cookie: john, wantUser: "jane_smith"},
		{name: "no credentials"},
		{name: "non-bearer header without cookie", header: "Token " + john},
		{name: "basic header falls back to cookie", header: "Basic dXNlcjpwYXNz", cookie: john, wantUser: "john_doe"},
		{name: "expired bearer falls back to cookie", header: "Bearer " + expired, cookie: john, wantUser: "john_doe"},
		{name: "unknown bearer user falls back to cookie", header: "Bearer " + mustIssue(t, tokens, "ghost"), cookie: john, wantUser: "john_doe"},
		{name: "garbage token", header: "Bearer nope"},
		{name: "garbage token and garbage cookie", header: "Bearer nope", cookie: "also-nope"},
		{name: "unknown user", header: "Bearer " + mustIssue(t, tokens, "ghost")},
		{name: "inactive user", cookie: mustIssue(t, tokens, "inactive")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}

			result := authn.Resolve(req)
			if tt.wantUser == "" {
				if result.Authenticated() {
					t.Fatalf("expected unauthenticated, got user %q", result.User.Username)
				}
				if result.Reason == "" {
					t.Error("expected a reason for the failure")
				}
				return
			}
			if !result.Authenticated() || result.User.Username != tt.wantUser {
				t.Fatalf("expected user %q, got %+v", tt.wantUser, result)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authn, tokens := newTestAuthenticator(t)

	r := gin.New()
	r.GET("/me", AuthMiddleware(authn), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("expected WWW-Authenticate header, got %q", w.Header().Get("WWW-Authenticate"))
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: mustIssue(t, tokens, "john_doe")})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with cookie, got %d; body: %s", w.Code, w.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		allowlist      []string
		username       string
		expectedStatus int
	}{
		{"empty allow-list admits everyone", nil, "john_doe", http.StatusOK},
		{"listed user", []string{"jane_smith"}, "jane_smith", http.StatusOK},
		{"unlisted user", []string{"jane_smith"}, "john_doe", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				SetCurrentUser(c, &models.User{Username: tt.username, IsActive: true})
				c.Next()
			})
			r.GET("/admin/users", RequireAdmin(tt.allowlist), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d", tt.name, tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAuthCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	settings := CookieSettings{Name: "access_token", Secure: true}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SetAuthCookie(c, settings, "abc", 1800)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	got := cookies[0]
	if got.Value != "abc" || !got.HttpOnly || !got.Secure || got.SameSite != http.SameSiteLaxMode || got.MaxAge != 1800 {
		t.Errorf("unexpected cookie attributes: %+v", got)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ClearAuthCookie(c, settings)
	cleared := w.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("expected an expiring cookie, got %+v", cleared)
	}
}
