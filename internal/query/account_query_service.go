package query

import (
	"context"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/events"
	"github.com/eaglebank/mcp-banking/shared/models"
)

const (
	DefaultTransactionLimit = 10
	MaxTransactionLimit     = 100
)

// AccountViewReader reads account views.
type AccountViewReader interface {
	GetByID(ctx context.Context, id string) (*models.AccountView, error)
	GetFresh(ctx context.Context, id string) (*models.AccountView, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.AccountView, error)
}

// TransactionLister reads transaction history.
type TransactionLister interface {
	ListByAccount(ctx context.Context, accountID string, limit int) ([]models.TransactionView, error)
}

// AccountQueryService serves account and transaction reads. Every read tells the
// agent about it without waiting.
type AccountQueryService struct {
	accounts     AccountViewReader
	transactions TransactionLister
	notifier     events.Notifier
}

func NewAccountQueryService(accounts AccountViewReader, transactions TransactionLister, notifier events.Notifier) *AccountQueryService {
	return &AccountQueryService{accounts: accounts, transactions: transactions, notifier: notifier}
}

type accountLoader func(ctx context.Context, id string) (*models.AccountView, error)

// ownedAccount returns the account if it exists and belongs to user.
func (s *AccountQueryService) ownedAccount(ctx context.Context, load accountLoader, accountID string, user *models.User) (*models.AccountView, error) {
	view, err := load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if view.UserID != user.ID {
		return nil, apperrors.New(apperrors.ErrForbidden, "You can only access your own accounts")
	}
	return view, nil
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	views, err := s.accounts.ListByUserID(ctx, q.RequestingUser.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, events.AccountAccess, events.AccountReadEvent{
		UserID: q.RequestingUser.ID,
		Count:  len(views),
	})
	return views, nil
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	view, err := s.ownedAccount(ctx, s.accounts.GetByID, q.AccountID, q.RequestingUser)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, events.AccountDetails, events.AccountReadEvent{
		UserID:    q.RequestingUser.ID,
		AccountID: view.ID,
	})
	return view, nil
}

// GetBalance always reads the committed row; cached views may trail a transfer.
func (s *AccountQueryService) GetBalance(ctx context.Context, q cqrs.GetAccountQuery) (*models.BalanceView, error) {
	view, err := s.ownedAccount(ctx, s.accounts.GetFresh, q.AccountID, q.RequestingUser)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, events.BalanceCheck, events.AccountReadEvent{
		UserID:    q.RequestingUser.ID,
		AccountID: view.ID,
	})
	return &models.BalanceView{
		AccountID:   view.ID,
		Balance:     view.Balance,
		Currency:    view.Currency,
		AccountName: view.AccountName,
	}, nil
}

// NormalizeLimit applies the default for 0 and caps large values.
func NormalizeLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return DefaultTransactionLimit, nil
	case limit < 0:
		return 0, apperrors.New(apperrors.ErrInvalidRequest, "limit must be a positive integer")
	case limit > MaxTransactionLimit:
		return MaxTransactionLimit, nil
	default:
		return limit, nil
	}
}

func (s *AccountQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.TransactionView, error) {
	limit, err := NormalizeLimit(q.Limit)
	if err != nil {
		return nil, err
	}
	view, err := s.ownedAccount(ctx, s.accounts.GetByID, q.AccountID, q.RequestingUser)
	if err != nil {
		return nil, err
	}

	txns, err := s.transactions.ListByAccount(ctx, view.ID, limit)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, events.TransactionHistory, events.AccountReadEvent{
		UserID:    q.RequestingUser.ID,
		AccountID: view.ID,
		Count:     len(txns),
	})
	return txns, nil
}
