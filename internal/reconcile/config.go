// Package reconcile matches extracted receipts against bank transactions
// under date and amount tolerances.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Default tolerances: three days absorbs weekend posting lag, one cent
// absorbs rounding differences between receipt totals and posted amounts.
const DefaultDateToleranceDays = 3

// DefaultAmountEpsilon returns the default absolute amount tolerance
func DefaultAmountEpsilon() decimal.Decimal {
	return decimal.New(1, -2) // 0.01
}

// Config holds the matching tolerances
type Config struct {
	DateToleranceDays int             `json:"date_tolerance_days"`
	AmountEpsilon     decimal.Decimal `json:"amount_epsilon"`
}

// DefaultConfig returns the documented default tolerances
func DefaultConfig() *Config {
	return &Config{
		DateToleranceDays: DefaultDateToleranceDays,
		AmountEpsilon:     DefaultAmountEpsilon(),
	}
}

// Validate checks that the tolerances are usable
func (c *Config) Validate() error {
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance must be non-negative, got %d", c.DateToleranceDays)
	}
	if c.AmountEpsilon.IsNegative() {
		return fmt.Errorf("amount epsilon must be non-negative, got %s", c.AmountEpsilon)
	}
	if c.AmountEpsilon.GreaterThanOrEqual(decimal.New(1, 0)) {
		return fmt.Errorf("amount epsilon must be below 1.00, got %s", c.AmountEpsilon)
	}
	return nil
}
