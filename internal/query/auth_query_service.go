package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/auth"
	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/utils"
)

// CredentialStore finds users by username.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenResult is returned by a successful login.
type TokenResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"-"`
}

// AuthQueryService handles login. Logging in does not mutate application
// state, so there is no command side for auth.
type AuthQueryService struct {
	users  CredentialStore
	tokens *auth.TokenManager
}

func NewAuthQueryService(users CredentialStore, tokens *auth.TokenManager) *AuthQueryService {
	return &AuthQueryService{users: users, tokens: tokens}
}

func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*TokenResult, error) {
	invalid := apperrors.New(apperrors.ErrUnauthorized, "Incorrect username or password")

	user, err := s.users.GetByUsername(ctx, cmd.Username)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Hash anyway so unknown usernames take as long as wrong passwords.
		utils.CheckPassword(cmd.Password, dummyHash())
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "Inactive user")
	}

	token, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

var dummyHash = sync.OnceValue(func() string {
	hash, _ := utils.HashPassword("unused-login-timing-password")
	return hash
})
