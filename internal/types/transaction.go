// Package types provides type definitions for structured data used throughout the email-agent system.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is one normalized row from a bank statement export.
// Negative amounts are debits (money out), positive amounts are credits.
type BankTransaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference,omitempty"`
}

// IsDebit reports whether the transaction is money leaving the account.
func (t BankTransaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// AbsAmount returns the transaction amount with the sign stripped.
func (t BankTransaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}
