package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/eaglebank/mcp-banking/internal/agent"
	"github.com/eaglebank/mcp-banking/shared/middleware"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/outcome"
	"github.com/gin-gonic/gin"
)

type AgentQuerier interface {
	AgentStatus(ctx context.Context) models.ServiceStatus
	AgentQuery(ctx context.Context, text string) (outcome.Outcome[agent.QueryResult], error)
}

type MCPHandler struct {
	queries AgentQuerier
}

type MCPQueryRequest struct {
	Query string `json:"query"`
}

func NewMCPHandler(queries AgentQuerier) *MCPHandler {
	return &MCPHandler{queries: queries}
}

func (h *MCPHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.queries.AgentStatus(c.Request.Context()))
}

func (h *MCPHandler) Query(c *gin.Context) {
	var req MCPQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.queries.AgentQuery(c.Request.Context(), req.Query)
	if err != nil {
		middleware.RespondWithAppError(c, err, "Query failed")
		return
	}
	if result.IsDegraded() {
		log.Printf("Agent query degraded: %s", result.Reason())
	}

	c.JSON(http.StatusOK, result.Value())
}
