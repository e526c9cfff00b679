package bank

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Portfolio is the bank's view of a customer. The bank's schema is loose, so the
// known sections are kept as raw JSON values and anything else lands in Extra.
type Portfolio struct {
	User             any            `mapstructure:"user"`
	PortfolioSummary any            `mapstructure:"portfolio_summary"`
	Assets           any            `mapstructure:"assets"`
	BankAccounts     any            `mapstructure:"bank_accounts"`
	Transactions     any            `mapstructure:"transactions"`
	Spending         any            `mapstructure:"spending"`
	Derivatives      any            `mapstructure:"derivatives"`
	Extra            map[string]any `mapstructure:",remain"`
}

func decodePortfolio(raw map[string]any) (*Portfolio, error) {
	var p Portfolio
	if err := mapstructure.Decode(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio: %w", err)
	}
	return &p, nil
}

// MarshalJSON writes the portfolio back out with the bank's own keys.
func (p Portfolio) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+7)
	for k, v := range p.Extra {
		out[k] = v
	}
	for k, v := range map[string]any{
		"user":              p.User,
		"portfolio_summary": p.PortfolioSummary,
		"assets":            p.Assets,
		"bank_accounts":     p.BankAccounts,
		"transactions":      p.Transactions,
		"spending":          p.Spending,
		"derivatives":       p.Derivatives,
	} {
		if v != nil {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// decodeCustomers accepts either a bare array or {"customers": [...]}.
func decodeCustomers(raw any) ([]map[string]any, error) {
	if obj, ok := raw.(map[string]any); ok {
		inner, found := obj["customers"]
		if !found {
			return nil, fmt.Errorf("unexpected customers payload")
		}
		raw = inner
	}
	customers := []map[string]any{}
	if raw == nil {
		return customers, nil
	}
	if err := mapstructure.Decode(raw, &customers); err != nil {
		return nil, fmt.Errorf("failed to decode customers: %w", err)
	}
	return customers, nil
}
