package query

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eaglebank/mcp-banking/internal/agent"
	"github.com/eaglebank/mcp-banking/internal/bank"
	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/models"
)

type mockCredentials struct {
	users map[string]*models.User
	err   error
}

func (m *mockCredentials) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, apperrors.New(apperrors.ErrNotFound, "User not found")
}

type mockAccountViews struct {
	views      map[string]*models.AccountView
	freshReads int
}

func (m *mockAccountViews) GetFresh(ctx context.Context, id string) (*models.AccountView, error) {
	m.freshReads++
	return m.GetByID(ctx, id)
}

func (m *mockAccountViews) GetByID(_ context.Context, id string) (*models.AccountView, error) {
	if v, ok := m.views[id]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, apperrors.New(apperrors.ErrNotFound, "Account not found")
}

func (m *mockAccountViews) ListByUserID(_ context.Context, userID int64) ([]models.AccountView, error) {
	var out []models.AccountView
	for _, id := range []string{"ACC001", "ACC002", "ACC003"} {
		if v, ok := m.views[id]; ok && v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out, nil
}

type mockTransactionLister struct {
	gotLimit int
	txns     []models.TransactionView
}

func (m *mockTransactionLister) ListByAccount(_ context.Context, _ string, limit int) ([]models.TransactionView, error) {
	m.gotLimit = limit
	if len(m.txns) > limit {
		return m.txns[:limit], nil
	}
	return m.txns, nil
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

type mockBank struct {
	portfolioFn func(oid string) (*bank.Portfolio, error)
	status      models.ServiceStatus
}

var _ bank.API = (*mockBank)(nil)

func (m *mockBank) RegisterCustomer(context.Context, string) (string, error) {
	return "", fmt.Errorf("not configured")
}
func (m *mockBank) GetPortfolio(_ context.Context, oid string) (*bank.Portfolio, error) {
	if m.portfolioFn != nil {
		return m.portfolioFn(oid)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockBank) CustomerExists(context.Context, string) (bool, error) { return false, nil }
func (m *mockBank) DeleteCustomer(context.Context, string) error { return nil }
func (m *mockBank) ListCustomers(context.Context) ([]map[string]any, error) {
	return []map[string]any{{"customer_oid": "a"}}, nil
}
func (m *mockBank) Status(context.Context) models.ServiceStatus { return m.status }

type mockAgent struct {
	queryFn func(text string) (*agent.QueryResult, error)
	status  models.ServiceStatus
}

var _ agent.API = (*mockAgent)(nil)

func (m *mockAgent) Query(_ context.Context, text string) (*agent.QueryResult, error) {
	if m.queryFn != nil {
		return m.queryFn(text)
	}
	return nil, fmt.Errorf("%w: not configured", apperrors.ErrAgent)
}
func (m *mockAgent) Status(context.Context) models.ServiceStatus { return m.status }

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeCache string

func (c fakeCache) Status(context.Context) string { return string(c) }

var errDown = errors.New("connection refused")
