package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eaglebank/mcp-banking/internal/query"
	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/middleware"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/gin-gonic/gin"
)

// UserRegistrar is the write side used by AuthHandler.
type UserRegistrar interface {
	Register(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, error)
}

// LoginQuerier issues tokens for valid credentials.
type LoginQuerier interface {
	Login(ctx context.Context, cmd cqrs.LoginCommand) (*query.TokenResult, error)
}

type AuthHandler struct {
	commands UserRegistrar
	queries  LoginQuerier
	cookie   middleware.CookieSettings
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"max=100"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func NewAuthHandler(commands UserRegistrar, queries LoginQuerier, cookie middleware.CookieSettings) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries, cookie: cookie}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.commands.Register(c.Request.Context(), cqrs.RegisterUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		// Duplicates are a client error on this endpoint, not 409.
		if errors.Is(err, apperrors.ErrConflict) {
			msg, _ := apperrors.PublicMessage(err)
			middleware.RespondWithError(c, http.StatusBadRequest, msg)
			return
		}
		middleware.RespondWithAppError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusOK, models.NewUserView(user))
}

// Token is the OAuth2 password-flow endpoint and takes form fields.
func (h *AuthHandler) Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.login(c, req)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.login(c, req)
}

func (h *AuthHandler) login(c *gin.Context, req LoginRequest) {
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		middleware.RespondWithAppError(c, err, "Login failed")
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	middleware.SetAuthCookie(c, h.cookie, result.AccessToken, maxAge)
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearAuthCookie(c, h.cookie)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	c.JSON(http.StatusOK, models.NewUserView(user))
}
