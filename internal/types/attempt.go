// Package types provides type definitions for structured data used throughout the email-agent system.
package types

import (
	"sort"
	"time"
)

// Attempt is the pure projection of one processing attempt's stage rows.
type Attempt struct {
	Rows             []StageLog
	Status           ProcessingStatus
	SuccessfulStages int
	IsReceipt        *bool
	LastProcessedAt  time.Time
}

// Completed reports whether the attempt reached the completed terminal state.
func (a Attempt) Completed() bool {
	return a.Status == StatusCompleted
}

// SplitAttempts groups a document's stage rows into processing attempts. Rows
// are ordered by processed time and a new attempt begins at every classify
// row, so each group is a contiguous classify-led run.
func SplitAttempts(rows []StageLog) [][]StageLog {
	if len(rows) == 0 {
		return nil
	}

	ordered := make([]StageLog, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ProcessedAt.Before(ordered[j].ProcessedAt)
	})

	var attempts [][]StageLog
	var current []StageLog
	for _, row := range ordered {
		if row.Stage == StageClassify && len(current) > 0 {
			attempts = append(attempts, current)
			current = nil
		}
		current = append(current, row)
	}
	attempts = append(attempts, current)
	return attempts
}

// ProjectAttempt derives the aggregate outcome of one attempt from its stage
// rows alone: classify failure means unknown, classify success without an
// extract row means the document was not a receipt, a failed extract or
// persist means classified_only, and a successful persist means completed.
// No other combination is reachable because a later stage only runs after the
// preceding one succeeded.
func ProjectAttempt(rows []StageLog) Attempt {
	a := Attempt{Rows: rows, Status: StatusPending}
	if len(rows) == 0 {
		return a
	}

	byStage := make(map[Stage]StageLog, len(rows))
	for _, row := range rows {
		if row.Success {
			a.SuccessfulStages++
		}
		if row.ProcessedAt.After(a.LastProcessedAt) {
			a.LastProcessedAt = row.ProcessedAt
		}
		byStage[row.Stage] = row
	}

	classify, ok := byStage[StageClassify]
	if !ok || !classify.Success {
		a.Status = StatusUnknown
		return a
	}

	extract, hasExtract := byStage[StageExtract]
	if !hasExtract {
		isReceipt := false
		a.IsReceipt = &isReceipt
		a.Status = StatusNotReceipt
		return a
	}

	isReceipt := true
	a.IsReceipt = &isReceipt

	persist, hasPersist := byStage[StagePersist]
	if !extract.Success || !hasPersist || !persist.Success {
		a.Status = StatusClassifiedOnly
		return a
	}
	a.Status = StatusCompleted
	return a
}

// LatestAttempt projects the most recent attempt in a document's full row
// history.
func LatestAttempt(rows []StageLog) Attempt {
	attempts := SplitAttempts(rows)
	if len(attempts) == 0 {
		return ProjectAttempt(nil)
	}
	return ProjectAttempt(attempts[len(attempts)-1])
}
