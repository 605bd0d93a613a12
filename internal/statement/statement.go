// Package statement parses delimited bank statement files into transactions.
package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// Supported date layouts, tried in priority order. The first layout that
// parses wins, so an ambiguous day/month value resolves as US-style.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
}

// RowError records one rejected statement row. Row is the 1-based record
// number within the file, counting the header row if present.
type RowError struct {
	Row    int    `json:"row"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Result holds the transactions parsed from one statement file alongside the
// rows that could not be parsed. A bad row never aborts the file; it lands
// in RowErrors and parsing moves on.
type Result struct {
	Transactions []types.BankTransaction `json:"transactions"`
	RowErrors    []RowError              `json:"row_errors,omitempty"`
}

// ParseError reports a statement file that could not be read at all, as
// opposed to individual bad rows inside a readable file.
type ParseError struct {
	File    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("statement parse error: %s: %s: %v", e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("statement parse error: %s: %s", e.File, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// record is one split row paired with its position in the file, so row
// numbers stay accurate when the reader skips unreadable lines.
type record struct {
	num    int
	fields []string
}

// ParseRecords converts pre-split rows into transactions, collecting
// per-row errors. A first row whose date and amount cells both fail to
// parse is treated as a column header and skipped without an error record.
func ParseRecords(rows [][]string) *Result {
	records := make([]record, len(rows))
	for i, fields := range rows {
		records[i] = record{num: i + 1, fields: fields}
	}
	return parseRecordList(records)
}

func parseRecordList(records []record) *Result {
	result := &Result{}

	for i, rec := range records {
		if i == 0 && rec.num == 1 && isHeaderRow(rec.fields) {
			continue
		}

		txn, rowErr := convertRow(rec.fields, rec.num)
		if rowErr != nil {
			result.RowErrors = append(result.RowErrors, *rowErr)
			continue
		}
		result.Transactions = append(result.Transactions, txn)
	}

	return result
}

func isHeaderRow(fields []string) bool {
	if len(fields) < 3 {
		return false
	}
	_, dateErr := parseDate(fields[0])
	_, amountErr := parseAmount(fields[2])
	return dateErr != nil && amountErr != nil
}

func convertRow(fields []string, rowNum int) (types.BankTransaction, *RowError) {
	raw := strings.Join(fields, ",")

	if len(fields) < 3 {
		return types.BankTransaction{}, &RowError{
			Row:    rowNum,
			Raw:    raw,
			Reason: fmt.Sprintf("expected at least 3 columns, got %d", len(fields)),
		}
	}

	date, err := parseDate(fields[0])
	if err != nil {
		return types.BankTransaction{}, &RowError{
			Row:    rowNum,
			Raw:    raw,
			Reason: fmt.Sprintf("bad date %q: %v", strings.TrimSpace(fields[0]), err),
		}
	}

	amount, err := parseAmount(fields[2])
	if err != nil {
		return types.BankTransaction{}, &RowError{
			Row:    rowNum,
			Raw:    raw,
			Reason: fmt.Sprintf("bad amount %q: %v", strings.TrimSpace(fields[2]), err),
		}
	}

	txn := types.BankTransaction{
		Date:        date,
		Description: strings.TrimSpace(fields[1]),
		Amount:      amount,
	}
	if len(fields) > 3 {
		txn.Reference = strings.TrimSpace(fields[3])
	}
	return txn, nil
}

func parseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, cell)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("no supported format matched: %v", lastErr)
}

// parseAmount accepts signed decimals with optional currency symbols and
// thousands separators. Accounting-style parentheses mean negative.
func parseAmount(cell string) (decimal.Decimal, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(cell, "(") && strings.HasSuffix(cell, ")") {
		negative = true
		cell = cell[1 : len(cell)-1]
	}

	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ':
			return -1
		}
		return r
	}, cell)

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number")
	}
	if negative {
		amount = amount.Neg()
	}
	return amount.Round(2), nil
}
