package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/middleware"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/utils"
	"github.com/gin-gonic/gin"
)

const msgInvalidAccountID = "Invalid account ID format"

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error)
	GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error)
	GetBalance(ctx context.Context, q cqrs.GetAccountQuery) (*models.BalanceView, error)
	ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.TransactionView, error)
}

type AccountHandler struct {
	queries AccountQuerier
}

func NewAccountHandler(queries AccountQuerier) *AccountHandler {
	return &AccountHandler{queries: queries}
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	views, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{RequestingUser: user})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to list accounts")
		return
	}
	if views == nil {
		views = []models.AccountView{}
	}

	c.JSON(http.StatusOK, gin.H{"accounts": views})
}

// accountParam returns the :accountId path parameter, answering 400 when it is
// not an account code.
func accountParam(c *gin.Context) (string, bool) {
	accountID := c.Param("accountId")
	if !utils.ValidateAccountID(accountID) {
		middleware.RespondWithError(c, http.StatusBadRequest, msgInvalidAccountID)
		return "", false
	}
	return accountID, true
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{
		AccountID:      accountID,
		RequestingUser: user,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Account not found")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	balance, err := h.queries.GetBalance(c.Request.Context(), cqrs.GetAccountQuery{
		AccountID:      accountID,
		RequestingUser: user,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Account not found")
		return
	}

	c.JSON(http.StatusOK, balance)
}

func (h *AccountHandler) ListTransactions(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	limit := 0
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.RespondWithError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	txns, err := h.queries.ListTransactions(c.Request.Context(), cqrs.ListTransactionsQuery{
		AccountID:      accountID,
		RequestingUser: user,
		Limit:          limit,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to list transactions")
		return
	}
	if txns == nil {
		txns = []models.TransactionView{}
	}

	c.JSON(http.StatusOK, txns)
}
