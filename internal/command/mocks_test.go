package command

import (
	"context"
	"fmt"
	"sync"

	"github.com/eaglebank/mcp-banking/internal/bank"
	"github.com/eaglebank/mcp-banking/internal/repository"
	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/models"
)

// ---- mock implementations ----

type mockUserStore struct {
	existsFn func(username, email string) (bool, error)
	createFn func(*models.User, []*models.Account) error
	setOIDFn func(userID int64, oid string) error
}

func (m *mockUserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(username, email)
	}
	return false, nil
}
func (m *mockUserStore) CreateWithAccounts(_ context.Context, u *models.User, accounts []*models.Account) error {
	if m.createFn != nil {
		return m.createFn(u, accounts)
	}
	return fmt.Errorf("not configured")
}
func (m *mockUserStore) SetCustomerOID(_ context.Context, userID int64, oid string) error {
	if m.setOIDFn != nil {
		return m.setOIDFn(userID, oid)
	}
	return fmt.Errorf("not configured")
}

type mockBank struct {
	registerFn func(name string) (string, error)
	existsFn   func(oid string) (bool, error)
	deleteFn   func(oid string) error
	deleted    []string
}

var _ bank.API = (*mockBank)(nil)

func (m *mockBank) RegisterCustomer(_ context.Context, name string) (string, error) {
	if m.registerFn != nil {
		return m.registerFn(name)
	}
	return "", fmt.Errorf("%w: not configured", apperrors.ErrBankUnavailable)
}
func (m *mockBank) GetPortfolio(context.Context, string) (*bank.Portfolio, error) {
	return nil, fmt.Errorf("not configured")
}
func (m *mockBank) CustomerExists(_ context.Context, oid string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(oid)
	}
	return false, fmt.Errorf("not configured")
}
func (m *mockBank) DeleteCustomer(_ context.Context, oid string) error {
	m.deleted = append(m.deleted, oid)
	if m.deleteFn != nil {
		return m.deleteFn(oid)
	}
	return nil
}
func (m *mockBank) ListCustomers(context.Context) ([]map[string]any, error) {
	return nil, fmt.Errorf("not configured")
}
func (m *mockBank) Status(context.Context) models.ServiceStatus {
	return models.ServiceStatus{Status: models.StatusDisconnected}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type mockAccounts struct {
	views       map[string]*models.AccountView
	invalidated []string
}

func (m *mockAccounts) GetByID(_ context.Context, id string) (*models.AccountView, error) {
	if v, ok := m.views[id]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, apperrors.New(apperrors.ErrNotFound, "Account not found")
}
func (m *mockAccounts) Invalidate(_ context.Context, ids ...string) {
	m.invalidated = append(m.invalidated, ids...)
}

type mockTransferWriter struct {
	transferFn func(repository.TransferParams) (*models.Transaction, error)
	calls      int
}

func (m *mockTransferWriter) Transfer(_ context.Context, p repository.TransferParams) (*models.Transaction, error) {
	m.calls++
	if m.transferFn != nil {
		return m.transferFn(p)
	}
	return nil, fmt.Errorf("not configured")
}
