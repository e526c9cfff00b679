package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/middleware"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/gin-gonic/gin"
)

type UserQuerier interface {
	ListUsers(ctx context.Context, q cqrs.ListUsersQuery) ([]models.UserView, error)
}

type ConfigCommander interface {
	UpdateConfig(ctx context.Context, cmd cqrs.UpdateConfigCommand) (string, error)
}

// AdminHandler serves the routes behind middleware.RequireAdmin.
type AdminHandler struct {
	commands ConfigCommander
	queries  UserQuerier
}

type UpdateConfigRequest struct {
	MCPServerURL string `json:"mcp_server_url"`
}

func NewAdminHandler(commands ConfigCommander, queries UserQuerier) *AdminHandler {
	return &AdminHandler{commands: commands, queries: queries}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	views, err := h.queries.ListUsers(c.Request.Context(), cqrs.ListUsersQuery{RequestingUser: user})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to list users")
		return
	}
	if views == nil {
		views = []models.UserView{}
	}

	c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, _ := middleware.CurrentUser(c)
	url, err := h.commands.UpdateConfig(c.Request.Context(), cqrs.UpdateConfigCommand{
		MCPServerURL: req.MCPServerURL,
		UpdatedBy:    user.Username,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to update configuration")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Configuration updated", "mcp_server_url": url})
}
