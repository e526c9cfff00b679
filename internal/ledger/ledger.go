// Package ledger holds the balance arithmetic for a transfer, free of I/O.
package ledger

import (
	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/shopspring/decimal"
)

// Apply moves amount from the source balance to the destination balance.
// On error both balances are returned unchanged.
func Apply(from, to, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if err := CheckAmount(amount); err != nil {
		return from, to, err
	}
	if amount.GreaterThan(from) {
		return from, to, apperrors.New(apperrors.ErrInsufficientFunds, "Insufficient balance")
	}
	return from.Sub(amount), to.Add(amount), nil
}

// CheckAmount rejects zero, negative and sub-cent amounts.
func CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.New(apperrors.ErrInvalidRequest, "Transfer amount must be positive")
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.New(apperrors.ErrInvalidRequest, "Transfer amount must have at most two decimal places")
	}
	return nil
}
