package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// Matcher pairs receipts with bank transactions using greedy
// nearest-neighbor assignment: every candidate pair inside the tolerance
// window is ranked before any assignment happens, then pairs are taken in
// rank order, one receipt to one transaction. The full ranking plus
// content-level tie-breaks make the result independent of input order.
type Matcher struct {
	config *Config
}

// NewMatcher creates a matcher, falling back to default tolerances
func NewMatcher(config *Config) *Matcher {
	if config == nil {
		config = DefaultConfig()
	}
	return &Matcher{config: config}
}

// candidate references a receipt/transaction pair by index with its
// normalized distances.
type candidate struct {
	receipt     int
	txn         int
	dateDelta   int
	amountDelta decimal.Decimal
}

// Match computes the one-to-one pairing between receipts and transactions.
// Only debit (negative amount) transactions can match a receipt; credits go
// straight to the unmatched residual.
func (m *Matcher) Match(receipts []types.ReceiptRecord, transactions []types.BankTransaction) *Report {
	rAmounts := make([]decimal.Decimal, len(receipts))
	rDates := make([]time.Time, len(receipts))
	for i, r := range receipts {
		rAmounts[i] = r.TotalAmount.Abs().Round(2)
		rDates[i] = dateOnly(r.TransactionDate)
	}

	tAmounts := make([]decimal.Decimal, len(transactions))
	tDates := make([]time.Time, len(transactions))
	eligible := make([]bool, len(transactions))
	for i, t := range transactions {
		tAmounts[i] = t.Amount.Abs().Round(2)
		tDates[i] = dateOnly(t.Date)
		eligible[i] = t.Amount.IsNegative()
	}

	var candidates []candidate
	for ri := range receipts {
		for ti := range transactions {
			if !eligible[ti] {
				continue
			}
			amountDelta := rAmounts[ri].Sub(tAmounts[ti]).Abs()
			if amountDelta.GreaterThan(m.config.AmountEpsilon) {
				continue
			}
			dateDelta := dateDeltaDays(rDates[ri], tDates[ti])
			if dateDelta > m.config.DateToleranceDays {
				continue
			}
			candidates = append(candidates, candidate{
				receipt:     ri,
				txn:         ti,
				dateDelta:   dateDelta,
				amountDelta: amountDelta,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.dateDelta != b.dateDelta {
			return a.dateDelta < b.dateDelta
		}
		if c := a.amountDelta.Cmp(b.amountDelta); c != 0 {
			return c < 0
		}
		if c := compareReceipts(receipts[a.receipt], receipts[b.receipt]); c != 0 {
			return c < 0
		}
		return compareTransactions(transactions[a.txn], transactions[b.txn]) < 0
	})

	matchedR := make([]bool, len(receipts))
	matchedT := make([]bool, len(transactions))
	var matches []Match
	for _, c := range candidates {
		if matchedR[c.receipt] || matchedT[c.txn] {
			continue
		}
		matchedR[c.receipt] = true
		matchedT[c.txn] = true
		matches = append(matches, Match{
			Receipt:       receipts[c.receipt],
			Transaction:   transactions[c.txn],
			DateDeltaDays: c.dateDelta,
			AmountDelta:   c.amountDelta,
		})
	}

	var unmatchedReceipts []types.ReceiptRecord
	for i, r := range receipts {
		if !matchedR[i] {
			unmatchedReceipts = append(unmatchedReceipts, r)
		}
	}
	sort.Slice(unmatchedReceipts, func(i, j int) bool {
		return compareReceipts(unmatchedReceipts[i], unmatchedReceipts[j]) < 0
	})

	var unmatchedTransactions []types.BankTransaction
	for i, t := range transactions {
		if !matchedT[i] {
			unmatchedTransactions = append(unmatchedTransactions, t)
		}
	}
	sort.Slice(unmatchedTransactions, func(i, j int) bool {
		return compareTransactions(unmatchedTransactions[i], unmatchedTransactions[j]) < 0
	})

	return &Report{
		Matches:               matches,
		UnmatchedReceipts:     unmatchedReceipts,
		UnmatchedTransactions: unmatchedTransactions,
		MatchedCount:          len(matches),
		ReconciliationRate:    rate(len(matches), len(unmatchedReceipts), len(unmatchedTransactions)),
	}
}

// dateOnly truncates an instant to its UTC calendar date
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateDeltaDays returns the absolute whole-day distance between two
// normalized dates.
func dateDeltaDays(a, b time.Time) int {
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

func compareReceipts(a, b types.ReceiptRecord) int {
	if !a.TransactionDate.Equal(b.TransactionDate) {
		if a.TransactionDate.Before(b.TransactionDate) {
			return -1
		}
		return 1
	}
	if c := a.TotalAmount.Cmp(b.TotalAmount); c != 0 {
		return c
	}
	if c := strings.Compare(a.SourceEmailID, b.SourceEmailID); c != 0 {
		return c
	}
	return strings.Compare(a.Filename, b.Filename)
}

func compareTransactions(a, b types.BankTransaction) int {
	if !a.Date.Equal(b.Date) {
		if a.Date.Before(b.Date) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Description, b.Description); c != 0 {
		return c
	}
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c
	}
	return strings.Compare(a.Reference, b.Reference)
}
