package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eaglebank/mcp-banking/internal/agent"
	"github.com/eaglebank/mcp-banking/internal/bank"
	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/outcome"
)

const (
	serviceName         = "mcp-banking-backend"
	healthCheckTimeout  = 6 * time.Second
	degradedAgentAnswer = "The banking assistant is currently unavailable. Please try again later."
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CacheStatus reports the state of the Redis cache.
type CacheStatus interface {
	Status(ctx context.Context) string
}

// HealthReport is the body of GET /health.
type HealthReport struct {
	Status    string               `json:"status"`
	Service   string               `json:"service"`
	Timestamp time.Time            `json:"timestamp"`
	Database  string               `json:"database"`
	MCPServer models.ServiceStatus `json:"mcp_server"`
	DummyBank models.ServiceStatus `json:"dummy_bank"`
	Cache     string               `json:"cache"`
}

// IntegrationQueryService fronts the bank and the agent, and builds health reports.
type IntegrationQueryService struct {
	bank  bank.API
	agent agent.API
	db    Pinger
	cache CacheStatus
	now   func() time.Time
}

func NewIntegrationQueryService(bankAPI bank.API, agentAPI agent.API, db Pinger, cache CacheStatus) *IntegrationQueryService {
	return &IntegrationQueryService{bank: bankAPI, agent: agentAPI, db: db, cache: cache, now: time.Now}
}

func (s *IntegrationQueryService) Portfolio(ctx context.Context, user *models.User) (*bank.Portfolio, error) {
	if user.CustomerOID == nil || *user.CustomerOID == "" {
		return nil, apperrors.New(apperrors.ErrInvalidRequest, "User not linked to dummy bank. Please sync first.")
	}
	return s.bank.GetPortfolio(ctx, *user.CustomerOID)
}

func (s *IntegrationQueryService) BankStatus(ctx context.Context) models.ServiceStatus {
	return s.bank.Status(ctx)
}

func (s *IntegrationQueryService) BankCustomers(ctx context.Context) ([]map[string]any, error) {
	return s.bank.ListCustomers(ctx)
}

func (s *IntegrationQueryService) AgentStatus(ctx context.Context) models.ServiceStatus {
	return s.agent.Status(ctx)
}

// AgentQuery always answers unless text is empty. When the agent fails the
// result is Degraded with a canned response.
func (s *IntegrationQueryService) AgentQuery(ctx context.Context, text string) (outcome.Outcome[agent.QueryResult], error) {
	if strings.TrimSpace(text) == "" {
		return outcome.Outcome[agent.QueryResult]{}, apperrors.New(apperrors.ErrInvalidRequest, "Query is required")
	}

	result, err := s.agent.Query(ctx, text)
	if err != nil {
		fallback := agent.QueryResult{
			Response:  degradedAgentAnswer,
			Timestamp: s.now().UTC().Format(time.RFC3339),
			Status:    "degraded",
		}
		return outcome.Degraded(fallback, err.Error()), nil
	}
	return outcome.Ok(*result), nil
}

// Health checks every dependency in parallel. A failing dependency is reported,
// never returned as an error.
func (s *IntegrationQueryService) Health(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	report := HealthReport{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: s.now().UTC(),
	}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		report.Database = models.StatusConnected
		if err := s.db.PingContext(ctx); err != nil {
			report.Database = models.StatusDisconnected
		}
	}()
	go func() {
		defer wg.Done()
		report.MCPServer = s.agent.Status(ctx)
	}()
	go func() {
		defer wg.Done()
		report.DummyBank = s.bank.Status(ctx)
	}()
	go func() {
		defer wg.Done()
		report.Cache = s.cache.Status(ctx)
	}()
	wg.Wait()

	return report
}
