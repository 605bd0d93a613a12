package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_WellFormedStatement(t *testing.T) {
	input := `Date,Description,Amount,Reference
2024-03-01,Coffee Shop,-42.50,TXN-001
2024-03-02,Salary,2500.00,
2024-03-03,Grocery Store,-87.12,TXN-003
`

	result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Empty(t, result.RowErrors)
	require.Len(t, result.Transactions, 3)

	first := result.Transactions[0]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Coffee Shop", first.Description)
	assert.Equal(t, "-42.5", first.Amount.String())
	assert.Equal(t, "TXN-001", first.Reference)
	assert.True(t, first.IsDebit())

	assert.False(t, result.Transactions[1].IsDebit())
	assert.Empty(t, result.Transactions[1].Reference)
}

func TestParse_BadRowDoesNotAbortFile(t *testing.T) {
	input := `2024-03-01,Coffee,-3.50
02/30/2024,Coffee,-3.50
2024-03-03,Lunch,-12.00
`

	result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "Coffee", result.Transactions[0].Description)
	assert.Equal(t, "Lunch", result.Transactions[1].Description)

	require.Len(t, result.RowErrors, 1)
	rowErr := result.RowErrors[0]
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "02/30/2024,Coffee,-3.50", rowErr.Raw)
	assert.Contains(t, rowErr.Reason, `bad date "02/30/2024"`)
}

func TestParse_DateFormatPriority(t *testing.T) {
	tests := []struct {
		name  string
		cell  string
		year  int
		month time.Month
		day   int
	}{
		{"iso", "2024-03-05", 2024, time.March, 5},
		{"us wins when both could apply", "03/04/2024", 2024, time.March, 4},
		{"day first as fallback", "25/12/2024", 2024, time.December, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parseDate(tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.year, parsed.Year())
			assert.Equal(t, tt.month, parsed.Month())
			assert.Equal(t, tt.day, parsed.Day())
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		cell    string
		want    string
		wantErr bool
	}{
		{"plain negative", "-42.50", "-42.5", false},
		{"positive", "2500.00", "2500", false},
		{"currency symbol", "$1,234.56", "1234.56", false},
		{"parentheses negative", "(42.50)", "-42.5", false},
		{"euro", "€15.00", "15", false},
		{"rounds to cents", "3.504", "3.5", false},
		{"empty", "", "", true},
		{"words", "twelve", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := parseAmount(tt.cell)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, amount.String())
		})
	}
}

func TestParse_HeaderOnlySkippedOnFirstRow(t *testing.T) {
	input := `Date,Description,Amount
2024-03-01,Coffee,-3.50
`

	result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, result.RowErrors)
	require.Len(t, result.Transactions, 1)
}

func TestParse_NoHeader(t *testing.T) {
	input := "2024-03-01,Coffee,-3.50\n"

	result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, result.RowErrors)
	require.Len(t, result.Transactions, 1)
}

func TestParse_TooFewColumns(t *testing.T) {
	input := `2024-03-01,Coffee,-3.50
2024-03-02,missing amount
`

	result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Transactions, 1)
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 2, result.RowErrors[0].Row)
	assert.Contains(t, result.RowErrors[0].Reason, "expected at least 3 columns")
}

func TestParse_MalformedQuoting(t *testing.T) {
	input := "2024-03-01,Coffee,-3.50\n" +
		"2024-03-02,Cafe \"Latte,-4.00\n" +
		"2024-03-03,Lunch,-12.00\n"

	result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Transactions, 2)
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 2, result.RowErrors[0].Row)
}

func TestParse_EmptyInput(t *testing.T) {
	result, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
	assert.Empty(t, result.RowErrors)
}

func TestRowError_Error(t *testing.T) {
	err := RowError{Row: 4, Raw: "x,y,z", Reason: "bad amount"}
	assert.Equal(t, "row 4: bad amount", err.Error())
}
