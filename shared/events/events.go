package events

import (
	"context"
	"time"
)

// Event types sent to the agent.
const (
	UserRegistered     = "user_registered"
	CustomerSynced     = "customer_synced"
	AccountAccess      = "account_access"
	AccountDetails     = "account_details"
	BalanceCheck       = "balance_check"
	TransactionHistory = "transaction_history"
	TransferCompleted  = "transfer_completed"
)

// BankingEventsStream is the Redis stream that buffers events on their way to the agent.
const BankingEventsStream = "banking.events"

type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Notifier delivers an event without blocking the caller and without reporting failure.
type Notifier interface {
	Notify(ctx context.Context, eventType string, data any)
}

type UserRegisteredEvent struct {
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username"`
	CustomerOID *string `json:"customer_oid"`
}

type CustomerSyncedEvent struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	CustomerOID string `json:"customer_oid"`
}

// AccountReadEvent covers account_access, account_details, balance_check and transaction_history.
type AccountReadEvent struct {
	UserID    int64  `json:"user_id"`
	AccountID string `json:"account_id,omitempty"`
	Count     int    `json:"count,omitempty"`
}

type TransferCompletedEvent struct {
	TransactionID string `json:"transaction_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	UserID        int64  `json:"user_id"`
}
