package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserView is the public projection of a user.
// It never exposes PasswordHash.
type UserView struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    *string   `json:"full_name"`
	CustomerOID *string   `json:"customer_oid"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserView(u *User) *UserView {
	return &UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		CustomerOID: u.CustomerOID,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// AccountView is the read model of an account; it is also what the Redis cache stores.
// UserID is serialised because the API exposes it and ownership checks read it from the cache.
type AccountView struct {
	ID          string          `json:"id"`
	AccountName string          `json:"account_name"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	IsActive    bool            `json:"is_active"`
	UserID      int64           `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewAccountView(a *Account) *AccountView {
	return &AccountView{
		ID:          a.ID,
		AccountName: a.AccountName,
		AccountType: a.AccountType,
		Balance:     a.Balance,
		Currency:    a.Currency,
		IsActive:    a.IsActive,
		UserID:      a.UserID,
		CreatedAt:   a.CreatedAt,
	}
}

type BalanceView struct {
	AccountID   string          `json:"account_id"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	AccountName string          `json:"account_name"`
}

// TransactionView is the public projection of a transaction.
type TransactionView struct {
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

func NewTransactionView(t *Transaction) *TransactionView {
	return &TransactionView{
		ID:              t.ID,
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Description:     t.Description,
		TransactionType: t.TransactionType,
		Status:          t.Status,
		CreatedAt:       t.CreatedAt,
	}
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// ServiceStatus is the reachability report for an external dependency.
type ServiceStatus struct {
	Status    string         `json:"status"`
	URL       string         `json:"url"`
	Timestamp time.Time      `json:"timestamp"`
	Error     string         `json:"error,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

func (s ServiceStatus) Connected() bool { return s.Status == StatusConnected }
