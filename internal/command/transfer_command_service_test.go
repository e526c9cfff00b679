package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eaglebank/mcp-banking/internal/repository"
	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/events"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/shopspring/decimal"
)

var (
	john = &models.User{ID: 1, Username: "john_doe", IsActive: true}
	jane = &models.User{ID: 2, Username: "jane_smith", IsActive: true}
)

func testAccounts() *mockAccounts {
	return &mockAccounts{views: map[string]*models.AccountView{
		"ACC001": {ID: "ACC001", UserID: 1, Balance: decimal.NewFromInt(5000), Currency: "USD", IsActive: true},
		"ACC002": {ID: "ACC002", UserID: 1, Balance: decimal.NewFromInt(1000), Currency: "USD", IsActive: true},
		"ACC003": {ID: "ACC003", UserID: 2, Balance: decimal.NewFromInt(3000), Currency: "USD", IsActive: true},
		"ACC009": {ID: "ACC009", UserID: 2, Balance: decimal.NewFromInt(10), Currency: "EUR", IsActive: true},
	}}
}

func completedWriter() *mockTransferWriter {
	return &mockTransferWriter{transferFn: func(p repository.TransferParams) (*models.Transaction, error) {
		return &models.Transaction{
			ID: "TXN004", FromAccountID: &p.FromAccountID, ToAccountID: &p.ToAccountID,
			Amount: p.Amount, Currency: p.Currency, Description: p.Description,
			TransactionType: models.TransactionTypeTransfer, Status: models.TransactionStatusCompleted,
			CreatedAt: time.Now(),
		}, nil
	}}
}

func TestTransferSuccess(t *testing.T) {
	accounts := testAccounts()
	writer := completedWriter()
	notifier := &recordingNotifier{}
	svc := NewTransferCommandService(accounts, writer, notifier)

	txn, err := svc.Transfer(context.Background(), cqrs.TransferCommand{
		User: john, FromAccountID: "ACC001", ToAccountID: "ACC002", Amount: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Status != models.TransactionStatusCompleted || txn.Currency != "USD" {
		t.Errorf("unexpected transaction: %+v", txn)
	}
	if txn.Description == nil || *txn.Description != "Transfer to ACC002" {
		t.Errorf("expected default description, got %v", txn.Description)
	}
	if len(accounts.invalidated) != 2 {
		t.Errorf("expected both accounts invalidated, got %v", accounts.invalidated)
	}
	if got := notifier.sent(); len(got) != 1 || got[0] != events.TransferCompleted {
		t.Errorf("expected transfer_completed notification, got %v", got)
	}
}

func TestTransferRejections(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		from    string
		to      string
		amount  string
		curr    string
		wantErr error
	}{
		{"unknown source", john, "ACC404", "ACC002", "10", "", apperrors.ErrNotFound},
		{"not the owner", jane, "ACC001", "ACC003", "10", "", apperrors.ErrForbidden},
		{"not the owner even with a bad amount", jane, "ACC001", "ACC003", "-5", "", apperrors.ErrForbidden},
		{"unknown destination", john, "ACC001", "ACC404", "10", "", apperrors.ErrNotFound},
		{"same account", john, "ACC001", "ACC001", "10", "", apperrors.ErrInvalidRequest},
		{"zero amount", john, "ACC001", "ACC002", "0", "", apperrors.ErrInvalidRequest},
		{"negative amount", john, "ACC001", "ACC002", "-1", "", apperrors.ErrInvalidRequest},
		{"currency mismatch", john, "ACC001", "ACC009", "10", "", apperrors.ErrInvalidRequest},
		{"explicit other currency", john, "ACC001", "ACC002", "10", "EUR", apperrors.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := completedWriter()
			notifier := &recordingNotifier{}
			svc := NewTransferCommandService(testAccounts(), writer, notifier)

			_, err := svc.Transfer(context.Background(), cqrs.TransferCommand{
				User: tt.user, FromAccountID: tt.from, ToAccountID: tt.to,
				Amount: decimal.RequireFromString(tt.amount), Currency: tt.curr,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if writer.calls != 0 {
				t.Error("writer must not run when validation fails")
			}
			if len(notifier.sent()) != 0 {
				t.Error("no notification expected on failure")
			}
		})
	}
}

func TestTransferInsufficientFundsFromWriter(t *testing.T) {
	accounts := testAccounts()
	writer := &mockTransferWriter{transferFn: func(repository.TransferParams) (*models.Transaction, error) {
		return nil, apperrors.New(apperrors.ErrInsufficientFunds, "Insufficient balance")
	}}
	svc := NewTransferCommandService(accounts, writer, &recordingNotifier{})

	_, err := svc.Transfer(context.Background(), cqrs.TransferCommand{
		User: john, FromAccountID: "ACC001", ToAccountID: "ACC002", Amount: decimal.NewFromInt(999999),
	})
	if !errors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if len(accounts.invalidated) != 0 {
		t.Errorf("nothing changed, nothing to invalidate: %v", accounts.invalidated)
	}
}
