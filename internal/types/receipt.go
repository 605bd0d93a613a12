// Package types provides type definitions for structured data used throughout the email-agent system.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptRecord is the persisted output of a completed extraction: one
// receipt's structured fields tied back to the source document. TotalAmount
// is stored unsigned; a receipt always represents money spent.
type ReceiptRecord struct {
	ID              string          `json:"id,omitempty"`
	SourceEmailID   string          `json:"source_email_id"`
	Filename        string          `json:"filename"`
	MerchantName    string          `json:"merchant_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}
