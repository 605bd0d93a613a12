package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// Match pairs one receipt with one bank transaction and records how far
// apart the two were inside the tolerance window.
type Match struct {
	Receipt       types.ReceiptRecord   `json:"receipt"`
	Transaction   types.BankTransaction `json:"transaction"`
	DateDeltaDays int                   `json:"date_delta_days"`
	AmountDelta   decimal.Decimal       `json:"amount_delta"`
}

// Report is the outcome of one reconciliation run: the one-to-one pairing
// plus both residual sets. It is computed fresh per run and not persisted.
type Report struct {
	Matches               []Match                 `json:"matches"`
	UnmatchedReceipts     []types.ReceiptRecord   `json:"unmatched_receipts"`
	UnmatchedTransactions []types.BankTransaction `json:"unmatched_transactions"`
	MatchedCount          int                     `json:"matched_count"`
	ReconciliationRate    float64                 `json:"reconciliation_rate"`
}

// rate is matched over all unique records, as a percentage
func rate(matched, unmatchedReceipts, unmatchedTransactions int) float64 {
	denominator := matched + unmatchedReceipts + unmatchedTransactions
	if denominator == 0 {
		return 0
	}
	return float64(matched) / float64(denominator) * 100
}
