package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Balances and amounts are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	AccountTypeChecking = "checking"
	AccountTypeSavings  = "savings"
	AccountTypeCredit   = "credit"

	TransactionTypeTransfer   = "transfer"
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"

	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"

	DefaultCurrency = "USD"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     *string   `json:"full_name"`
	CustomerOID  *string   `json:"customer_oid"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Account struct {
	ID          string          `json:"id"`
	AccountName string          `json:"account_name"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	IsActive    bool            `json:"is_active"`
	UserID      int64           `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Transaction struct {
	ID              string          `json:"id"`
	FromAccountID   *string         `json:"from_account_id"`
	ToAccountID     *string         `json:"to_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     *string         `json:"description"`
	TransactionType string          `json:"transaction_type"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}
