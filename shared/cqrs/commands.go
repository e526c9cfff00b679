package cqrs

import (
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/shopspring/decimal"
)

type RegisterUserCommand struct {
	Username string
	Email    string
	Password string
	FullName string
}

type LoginCommand struct {
	Username string
	Password string
}

// TransferCommand moves Amount from FromAccountID to ToAccountID on behalf of User.
type TransferCommand struct {
	User          *models.User
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Currency      string
	Description   string
}

// SyncCustomerCommand links User to a customer record in the external bank.
type SyncCustomerCommand struct {
	User *models.User
}

type UpdateConfigCommand struct {
	MCPServerURL string
	UpdatedBy    string
}
