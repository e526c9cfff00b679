package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/middleware"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type TransferCommander interface {
	Transfer(ctx context.Context, cmd cqrs.TransferCommand) (*models.Transaction, error)
}

type TransferHandler struct {
	commands TransferCommander
}

type TransferRequest struct {
	ToAccountID string           `json:"to_account_id" validate:"required,max=20"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Currency    string           `json:"currency" validate:"omitempty,len=3,alpha"`
	Description string           `json:"description" validate:"max=255"`
}

func NewTransferHandler(commands TransferCommander) *TransferHandler {
	return &TransferHandler{commands: commands}
}

// Transfer moves money out of the account named by the from_account_id query parameter.
func (h *TransferHandler) Transfer(c *gin.Context) {
	fromAccountID := c.Query("from_account_id")
	if fromAccountID == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "from_account_id is required")
		return
	}
	if !utils.ValidateAccountID(fromAccountID) {
		middleware.RespondWithError(c, http.StatusBadRequest, msgInvalidAccountID)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if !utils.ValidateAccountID(req.ToAccountID) {
		middleware.RespondWithError(c, http.StatusBadRequest, msgInvalidAccountID)
		return
	}

	user, _ := middleware.CurrentUser(c)
	txn, err := h.commands.Transfer(c.Request.Context(), cqrs.TransferCommand{
		User:          user,
		FromAccountID: fromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        *req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Transfer failed")
		return
	}

	c.JSON(http.StatusOK, models.NewTransactionView(txn))
}
