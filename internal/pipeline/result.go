package pipeline

import (
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// ProgressEvent represents a progress update during document processing
type ProgressEvent struct {
	EmailID  string      `json:"email_id"`
	Filename string      `json:"filename"`
	Stage    types.Stage `json:"stage,omitempty"`
	Message  string      `json:"message"`
}

// ProgressCallback is called when processing progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds per-call processing configuration
type Options struct {
	// Force runs a fresh attempt even when the latest attempt completed
	Force bool
	// OnProgress receives stage-level progress events when set
	OnProgress ProgressCallback
}

// Result is the outcome of one Process call for one document.
type Result struct {
	EmailID  string                 `json:"email_id"`
	Filename string                 `json:"filename"`
	Status   types.ProcessingStatus `json:"status"`
	// Skipped is set when the document's latest attempt had already
	// completed and Force was off; no rows were appended.
	Skipped bool `json:"skipped,omitempty"`
	// Coalesced is set when this call shared an attempt already in flight
	// for the same fingerprint instead of starting its own.
	Coalesced        bool `json:"coalesced,omitempty"`
	SuccessfulStages int  `json:"successful_stages"`
	// Rows holds the stage rows appended by this attempt, in execution order
	Rows []types.StageLog `json:"rows,omitempty"`
	// LogError reports a best-effort persistence failure while recording the
	// attempt (the attempt itself still ran to a terminal status).
	LogError string `json:"log_error,omitempty"`
}

// BatchSummary aggregates the results of one ProcessBatch call. Skipped
// documents are counted apart from the status tallies, which cover only the
// attempts that actually ran.
type BatchSummary struct {
	Results        []Result `json:"results"`
	Total          int      `json:"total"`
	Completed      int      `json:"completed"`
	NotReceipt     int      `json:"not_receipt"`
	ClassifiedOnly int      `json:"classified_only"`
	Unknown        int      `json:"unknown"`
	Skipped        int      `json:"skipped"`
}

func buildSummary(results []Result) *BatchSummary {
	summary := &BatchSummary{Results: results, Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			summary.Skipped++
			continue
		}
		switch r.Status {
		case types.StatusCompleted:
			summary.Completed++
		case types.StatusNotReceipt:
			summary.NotReceipt++
		case types.StatusClassifiedOnly:
			summary.ClassifiedOnly++
		default:
			summary.Unknown++
		}
	}
	return summary
}
