package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/mcp-banking/internal/bank"
	"github.com/eaglebank/mcp-banking/internal/command"
	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/middleware"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/gin-gonic/gin"
)

type CustomerSyncer interface {
	SyncCustomer(ctx context.Context, cmd cqrs.SyncCustomerCommand) (*command.SyncResult, error)
}

type BankQuerier interface {
	Portfolio(ctx context.Context, user *models.User) (*bank.Portfolio, error)
	BankStatus(ctx context.Context) models.ServiceStatus
	BankCustomers(ctx context.Context) ([]map[string]any, error)
}

// BankHandler exposes the external bank to authenticated users.
type BankHandler struct {
	commands CustomerSyncer
	queries  BankQuerier
}

func NewBankHandler(commands CustomerSyncer, queries BankQuerier) *BankHandler {
	return &BankHandler{commands: commands, queries: queries}
}

func (h *BankHandler) Portfolio(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	portfolio, err := h.queries.Portfolio(c.Request.Context(), user)
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to fetch portfolio")
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

func (h *BankHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.queries.BankStatus(c.Request.Context()))
}

func (h *BankHandler) Customers(c *gin.Context) {
	customers, err := h.queries.BankCustomers(c.Request.Context())
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to fetch customers from bank")
		return
	}
	if customers == nil {
		customers = []map[string]any{}
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *BankHandler) Sync(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	result, err := h.commands.SyncCustomer(c.Request.Context(), cqrs.SyncCustomerCommand{User: user})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to sync with dummy bank")
		return
	}

	c.JSON(http.StatusOK, result)
}
