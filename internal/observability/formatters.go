// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/yatharthk2/EmailDemo-sub001/internal/pipeline"
	"github.com/yatharthk2/EmailDemo-sub001/internal/reconcile"
	"github.com/yatharthk2/EmailDemo-sub001/internal/statement"
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProcessedView outputs a human-readable summary of one document's
// latest processing state.
func (p *Printer) PrintProcessedView(view *types.ProcessedFileView) {
	if view == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Email:    %s\n", view.EmailID))
	sb.WriteString(fmt.Sprintf("File:     %s\n", view.Filename))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", view.ProcessingStatus))
	sb.WriteString(fmt.Sprintf("Stages:   %d successful\n", view.SuccessfulStages))
	sb.WriteString(fmt.Sprintf("Attempts: %d\n", view.Attempts))

	if view.IsReceipt != nil {
		sb.WriteString("\n")
		verdict := "not a receipt"
		if *view.IsReceipt {
			verdict = "receipt"
		}
		sb.WriteString(fmt.Sprintf("Verdict:  %s", verdict))
		if view.Confidence != nil {
			sb.WriteString(fmt.Sprintf(" (%.0f%% confidence)", *view.Confidence))
		}
		sb.WriteString("\n")
	}

	if view.MerchantName != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Merchant: %s\n", *view.MerchantName))
		if view.TotalAmount != nil {
			sb.WriteString(fmt.Sprintf("Amount:   %s\n", view.TotalAmount.StringFixed(2)))
		}
		if view.TransactionDate != nil {
			sb.WriteString(fmt.Sprintf("Date:     %s\n", view.TransactionDate.Format("2006-01-02")))
		}
	}

	p.printBox("PROCESSED DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchSummary outputs the outcome of a processing run with per-document
// status lines.
func (p *Printer) PrintBatchSummary(summary *pipeline.BatchSummary) {
	if summary == nil || summary.Total == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Processed %d documents\n", summary.Total))
	sb.WriteString(fmt.Sprintf("  completed: %d  not_receipt: %d\n", summary.Completed, summary.NotReceipt))
	sb.WriteString(fmt.Sprintf("  classified_only: %d  unknown: %d  skipped: %d\n\n", summary.ClassifiedOnly, summary.Unknown, summary.Skipped))

	count := min(len(summary.Results), maxItemsToShow)
	for i := 0; i < count; i++ {
		result := summary.Results[i]

		marker := "⚠"
		note := string(result.Status)
		switch {
		case result.Skipped:
			marker = "•"
			note = "skipped"
		case result.Status == types.StatusCompleted:
			marker = "✓"
		case result.Status == types.StatusNotReceipt:
			marker = "•"
		}

		name := result.EmailID + "/" + result.Filename
		if len(name) > 38 {
			name = name[:35] + "..."
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, name))
		sb.WriteString(fmt.Sprintf("  %s", note))
		if result.LogError != "" {
			sb.WriteString(" (log write failed)")
		}
		sb.WriteString("\n")
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(summary.Results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more documents", len(summary.Results)-maxItemsToShow))
	}

	p.printBox("PROCESSING SUMMARY", sb.String())
}

// PrintReport outputs a reconciliation report with the top matches and
// residual counts.
func (p *Printer) PrintReport(report *reconcile.Report) {
	if report == nil {
		return
	}

	total := report.MatchedCount + len(report.UnmatchedReceipts) + len(report.UnmatchedTransactions)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Matched %d of %d records (%.1f%%)\n", report.MatchedCount, total, report.ReconciliationRate))

	if len(report.Matches) > 0 {
		sb.WriteString("\n")
		count := min(len(report.Matches), maxItemsToShow)
		for i := 0; i < count; i++ {
			match := report.Matches[i]

			merchant := match.Receipt.MerchantName
			if len(merchant) > 40 {
				merchant = merchant[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("✓ %s\n", merchant))

			desc := match.Transaction.Description
			if len(desc) > 30 {
				desc = desc[:27] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s (%s", desc, match.Transaction.AbsAmount().StringFixed(2)))
			if match.DateDeltaDays == 0 {
				sb.WriteString(", same day)")
			} else {
				sb.WriteString(fmt.Sprintf(", %d days apart)", match.DateDeltaDays))
			}
			sb.WriteString("\n")
			if i < count-1 {
				sb.WriteString("\n")
			}
		}
		if len(report.Matches) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("\n... and %d more matches\n", len(report.Matches)-maxItemsToShow))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Unmatched receipts:     %d\n", len(report.UnmatchedReceipts)))
	sb.WriteString(fmt.Sprintf("Unmatched transactions: %d", len(report.UnmatchedTransactions)))

	p.printBox("RECONCILIATION REPORT", sb.String())
}

// PrintRowErrors outputs the statement rows that could not be parsed.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRowErrors(rowErrors []statement.RowError) {
	if len(rowErrors) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL STATEMENT ROWS PARSED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rejected %d rows:\n\n", len(rowErrors)))

	count := min(len(rowErrors), maxItemsToShow)
	for i := 0; i < count; i++ {
		rowErr := rowErrors[i]
		reason := rowErr.Reason
		if len(reason) > 45 {
			reason = reason[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ row %d\n", rowErr.Row))
		sb.WriteString(fmt.Sprintf("  %s\n", reason))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(rowErrors) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more rows", len(rowErrors)-maxItemsToShow))
	}

	p.printBox("STATEMENT ROW ERRORS", sb.String())
}
