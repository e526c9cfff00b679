package command

import (
	"context"
	"errors"
	"log"

	"github.com/eaglebank/mcp-banking/internal/ledger"
	"github.com/eaglebank/mcp-banking/internal/repository"
	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/events"
	"github.com/eaglebank/mcp-banking/shared/models"
)

// AccountReader looks up accounts and drops stale cached views.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (*models.AccountView, error)
	Invalidate(ctx context.Context, ids ...string)
}

// TransferWriter applies a transfer atomically.
type TransferWriter interface {
	Transfer(ctx context.Context, p repository.TransferParams) (*models.Transaction, error)
}

// TransferCommandService validates and executes transfers between accounts.
type TransferCommandService struct {
	accounts AccountReader
	writer   TransferWriter
	notifier events.Notifier
}

func NewTransferCommandService(accounts AccountReader, writer TransferWriter, notifier events.Notifier) *TransferCommandService {
	return &TransferCommandService{accounts: accounts, writer: writer, notifier: notifier}
}

// Transfer checks run in a fixed order: source exists, caller owns it,
// destination exists, distinct accounts, amount valid, currency matches.
// Sufficient funds is checked under row lock by the writer.
func (s *TransferCommandService) Transfer(ctx context.Context, cmd cqrs.TransferCommand) (*models.Transaction, error) {
	from, err := s.accounts.GetByID(ctx, cmd.FromAccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "Source account not found")
		}
		return nil, err
	}
	if from.UserID != cmd.User.ID {
		return nil, apperrors.New(apperrors.ErrForbidden, "You can only transfer from your own accounts")
	}

	to, err := s.accounts.GetByID(ctx, cmd.ToAccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "Destination account not found")
		}
		return nil, err
	}
	if from.ID == to.ID {
		return nil, apperrors.New(apperrors.ErrInvalidRequest, "Cannot transfer to the same account")
	}
	if err := ledger.CheckAmount(cmd.Amount); err != nil {
		return nil, err
	}

	currency := cmd.Currency
	if currency == "" {
		currency = from.Currency
	}
	if currency != from.Currency || currency != to.Currency {
		return nil, apperrors.New(apperrors.ErrInvalidRequest, "Currency conversion is not supported")
	}

	description := cmd.Description
	if description == "" {
		description = "Transfer to " + to.ID
	}

	txn, err := s.writer.Transfer(ctx, repository.TransferParams{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        cmd.Amount,
		Currency:      currency,
		Description:   &description,
	})
	if err != nil {
		return nil, err
	}

	s.accounts.Invalidate(ctx, from.ID, to.ID)
	log.Printf("Transfer completed: %s", txn.ID)
	s.notifier.Notify(ctx, events.TransferCompleted, events.TransferCompletedEvent{
		TransactionID: txn.ID,
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        txn.Amount.StringFixed(2),
		Currency:      txn.Currency,
		UserID:        cmd.User.ID,
	})
	return txn, nil
}
