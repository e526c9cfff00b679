package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/eaglebank/mcp-banking/shared/auth"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthResult is either an authenticated user or the reason there is none.
type AuthResult struct {
	User   *models.User
	Reason string
}

func (r AuthResult) Authenticated() bool { return r.User != nil }

func authenticated(u *models.User) AuthResult { return AuthResult{User: u} }

func unauthenticated(reason string) AuthResult { return AuthResult{Reason: reason} }

// Authenticator extracts the access token from a request and resolves its user.
// The Authorization header wins over the cookie when both are present.
type Authenticator struct {
	tokens     *auth.TokenManager
	users      UserLookup
	cookieName string
}

func NewAuthenticator(tokens *auth.TokenManager, users UserLookup, cookieName string) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, cookieName: cookieName}
}

// Resolve tries the Bearer token first and then the cookie. A token that fails
// to decode or names an unusable user falls through to the next one; the
// reason reported is the one from the first token tried.
func (a *Authenticator) Resolve(r *http.Request) AuthResult {
	tokens := a.candidateTokens(r)
	if len(tokens) == 0 {
		return unauthenticated("Not authenticated")
	}

	var first AuthResult
	for i, token := range tokens {
		result := a.resolveToken(r.Context(), token)
		if result.Authenticated() {
			return result
		}
		if i == 0 {
			first = result
		}
	}
	return first
}

func (a *Authenticator) resolveToken(ctx context.Context, token string) AuthResult {
	username, err := a.tokens.Decode(token)
	if err != nil {
		return unauthenticated("Invalid or expired token")
	}

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return unauthenticated("Could not validate credentials")
	}
	if !user.IsActive {
		return unauthenticated("Inactive user")
	}
	return authenticated(user)
}

// candidateTokens returns the Bearer token, if any, followed by the cookie
// token, if any. Authorization headers with another scheme are ignored.
func (a *Authenticator) candidateTokens(r *http.Request) []string {
	var tokens []string
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if token = strings.TrimSpace(token); ok && strings.EqualFold(scheme, "Bearer") && token != "" {
		tokens = append(tokens, token)
	}
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}
	return tokens
}

func AuthMiddleware(authn *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := authn.Resolve(c.Request)
		if !result.Authenticated() {
			c.Header("WWW-Authenticate", "Bearer")
			RespondWithError(c, http.StatusUnauthorized, result.Reason)
			c.Abort()
			return
		}

		c.Set(currentUserKey, result.User)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// SetCurrentUser is used by tests and by middleware that authenticates by other means.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

// CookieSettings controls the access token cookie.
type CookieSettings struct {
	Name   string
	Secure bool
}

func SetAuthCookie(c *gin.Context, s CookieSettings, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, maxAge, "/", "", s.Secure, true)
}

func ClearAuthCookie(c *gin.Context, s CookieSettings) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

// RequireAdmin admits only the listed usernames. An empty list admits every
// authenticated user. Must run after AuthMiddleware.
func RequireAdmin(usernames []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		allowed[u] = struct{}{}
	}
	if len(allowed) == 0 {
		log.Printf("WARNING: ADMIN_USERNAMES is empty, admin endpoints are open to every authenticated user")
	}

	return func(c *gin.Context) {
		if len(allowed) == 0 {
			c.Next()
			return
		}
		user, ok := CurrentUser(c)
		if !ok {
			RespondWithError(c, http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}
		if _, ok := allowed[user.Username]; !ok {
			RespondWithError(c, http.StatusForbidden, "Admin privileges required")
			c.Abort()
			return
		}
		c.Next()
	}
}
