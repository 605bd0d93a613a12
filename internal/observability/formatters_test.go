package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/yatharthk2/EmailDemo-sub001/internal/pipeline"
	"github.com/yatharthk2/EmailDemo-sub001/internal/reconcile"
	"github.com/yatharthk2/EmailDemo-sub001/internal/statement"
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

func TestPrintProcessedView(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	isReceipt := true
	confidence := 95.0
	merchant := "Coffee Shop"
	amount := decimal.RequireFromString("42.50")
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	view := &types.ProcessedFileView{
		EmailID:          "order-1@shop.example",
		Filename:         "receipt.pdf",
		ProcessingStatus: types.StatusCompleted,
		IsReceipt:        &isReceipt,
		Confidence:       &confidence,
		SuccessfulStages: 3,
		MerchantName:     &merchant,
		TotalAmount:      &amount,
		TransactionDate:  &date,
		Attempts:         1,
	}

	p.PrintProcessedView(view)
	output := buf.String()

	assert.Contains(t, output, "PROCESSED DOCUMENT")
	assert.Contains(t, output, "order-1@shop.example")
	assert.Contains(t, output, "receipt.pdf")
	assert.Contains(t, output, "completed")
	assert.Contains(t, output, "95% confidence")
	assert.Contains(t, output, "Coffee Shop")
	assert.Contains(t, output, "42.50")
	assert.Contains(t, output, "2024-03-01")
}

func TestPrintProcessedView_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProcessedView(nil)

	assert.Empty(t, buf.String())
}

func TestPrintProcessedView_NotReceipt(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	isReceipt := false
	view := &types.ProcessedFileView{
		EmailID:          "e1",
		Filename:         "body.txt",
		ProcessingStatus: types.StatusNotReceipt,
		IsReceipt:        &isReceipt,
		SuccessfulStages: 1,
		Attempts:         1,
	}

	p.PrintProcessedView(view)
	output := buf.String()

	assert.Contains(t, output, "not a receipt")
	assert.NotContains(t, output, "Merchant")
}

func TestPrintBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	summary := &pipeline.BatchSummary{
		Results: []pipeline.Result{
			{EmailID: "e1", Filename: "receipt.pdf", Status: types.StatusCompleted},
			{EmailID: "e2", Filename: "body.txt", Status: types.StatusNotReceipt},
			{EmailID: "e3", Filename: "scan.png", Status: types.StatusCompleted, Skipped: true},
			{EmailID: "e4", Filename: "broken.pdf", Status: types.StatusUnknown, LogError: "disk full"},
		},
		Total:      4,
		Completed:  1,
		NotReceipt: 1,
		Unknown:    1,
		Skipped:    1,
	}

	p.PrintBatchSummary(summary)
	output := buf.String()

	assert.Contains(t, output, "PROCESSING SUMMARY")
	assert.Contains(t, output, "Processed 4 documents")
	assert.Contains(t, output, "e1/receipt.pdf")
	assert.Contains(t, output, "skipped")
	assert.Contains(t, output, "log write failed")
}

func TestPrintBatchSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBatchSummary(nil)
	p.PrintBatchSummary(&pipeline.BatchSummary{})

	assert.Empty(t, buf.String())
}

func TestPrintBatchSummary_ManyDocuments(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	summary := &pipeline.BatchSummary{Total: 8, Completed: 8}
	for i := 0; i < 8; i++ {
		summary.Results = append(summary.Results, pipeline.Result{
			EmailID:  "e1",
			Filename: "receipt.pdf",
			Status:   types.StatusCompleted,
		})
	}

	p.PrintBatchSummary(summary)
	output := buf.String()

	assert.Contains(t, output, "and 3 more documents")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := &reconcile.Report{
		Matches: []reconcile.Match{
			{
				Receipt:     types.ReceiptRecord{MerchantName: "Coffee Shop"},
				Transaction: types.BankTransaction{Description: "COFFEE SHOP", Amount: decimal.RequireFromString("-42.50")},
			},
			{
				Receipt:       types.ReceiptRecord{MerchantName: "Book Store"},
				Transaction:   types.BankTransaction{Description: "BOOKSTORE PURCHASE", Amount: decimal.RequireFromString("-19.99")},
				DateDeltaDays: 2,
			},
		},
		UnmatchedReceipts:     []types.ReceiptRecord{{MerchantName: "Lost"}},
		UnmatchedTransactions: []types.BankTransaction{},
		MatchedCount:          2,
		ReconciliationRate:    66.7,
	}

	p.PrintReport(report)
	output := buf.String()

	assert.Contains(t, output, "RECONCILIATION REPORT")
	assert.Contains(t, output, "Matched 2 of 3 records (66.7%)")
	assert.Contains(t, output, "Coffee Shop")
	assert.Contains(t, output, "same day")
	assert.Contains(t, output, "2 days apart")
	assert.Contains(t, output, "Unmatched receipts:     1")
}

func TestPrintReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(nil)

	assert.Empty(t, buf.String())
}

func TestPrintRowErrors_WithErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rowErrors := []statement.RowError{
		{Row: 4, Raw: "not-a-date,BROKEN,-1.00", Reason: `bad date "not-a-date": no supported format matched`},
	}

	p.PrintRowErrors(rowErrors)
	output := buf.String()

	assert.Contains(t, output, "STATEMENT ROW ERRORS")
	assert.Contains(t, output, "row 4")
	assert.Contains(t, output, "bad date")
}

func TestPrintRowErrors_NoErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRowErrors(nil)
	output := buf.String()

	assert.Contains(t, output, "ALL STATEMENT ROWS PARSED")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	view := &types.ProcessedFileView{
		EmailID:          "a-very-long-message-id-that-should-be-truncated@mail.example.com",
		Filename:         "quarterly-expense-report-scanned-final-v2-revised.pdf",
		ProcessingStatus: types.StatusCompleted,
	}

	p.PrintProcessedView(view)
	output := buf.String()

	// Should contain box characters
	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
