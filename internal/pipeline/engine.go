// Package pipeline drives documents through the classify, extract and
// persist stages, recording every stage outcome as an append-only log row.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yatharthk2/EmailDemo-sub001/internal/capability"
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// DefaultWorkers bounds batch concurrency when no worker count is configured
const DefaultWorkers = 4

// Store is the narrow persistence surface the engine needs. *db.DB
// implements it; tests substitute an in-memory fake.
type Store interface {
	AppendStageLog(ctx context.Context, log *types.StageLog) error
	StageLogHistory(ctx context.Context, emailID, filename string) ([]types.StageLog, error)
	SaveClassification(ctx context.Context, emailID, filename string, c types.Classification) error
	SaveReceipt(ctx context.Context, r *types.ReceiptRecord) error
}

// Engine orchestrates processing attempts. At most one attempt per document
// fingerprint runs at a time: concurrent Process calls for the same
// fingerprint coalesce onto the in-flight attempt and share its result, so
// two attempts can never interleave stage rows.
type Engine struct {
	capability capability.Client
	store      Store
	group      singleflight.Group
	workers    int
}

// NewEngine creates an engine with the given capability client and store
func NewEngine(client capability.Client, store Store, workers int) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{
		capability: client,
		store:      store,
		workers:    workers,
	}
}

// Process runs one document through the stage pipeline. When the document's
// latest attempt already completed and opts.Force is off, nothing is
// appended and the result comes back marked skipped. Stage failures are not
// errors: they terminate the attempt in one of the terminal statuses and
// are reported through the result.
func (e *Engine) Process(ctx context.Context, job types.DocumentJob, opts Options) (*Result, error) {
	v, err, shared := e.group.Do(job.Fingerprint(), func() (interface{}, error) {
		return e.runAttempt(ctx, job, opts), nil
	})
	if err != nil {
		return nil, err
	}

	result := v.(*Result)
	if shared {
		coalesced := *result
		coalesced.Coalesced = true
		return &coalesced, nil
	}
	return result, nil
}

// ProcessBatch processes distinct documents concurrently under the worker
// limit. One document's failure never aborts another's run; per-document
// outcomes land in the summary.
func (e *Engine) ProcessBatch(ctx context.Context, jobs []types.DocumentJob, opts Options) (*BatchSummary, error) {
	results := make([]Result, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(e.workers)

	for i, job := range jobs {
		g.Go(func() error {
			result, err := e.Process(ctx, job, opts)
			if err != nil {
				results[i] = Result{
					EmailID:  job.EmailID,
					Filename: job.Filename,
					Status:   types.StatusUnknown,
					LogError: err.Error(),
				}
				return nil
			}
			results[i] = *result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildSummary(results), nil
}

// runAttempt executes the stage state machine for one document. Once an
// attempt starts it runs to a terminal status; cancellation surfaces as a
// capability failure on the stage in flight rather than stopping between
// rows.
func (e *Engine) runAttempt(ctx context.Context, job types.DocumentJob, opts Options) *Result {
	result := &Result{EmailID: job.EmailID, Filename: job.Filename}

	if !opts.Force {
		history, err := e.store.StageLogHistory(ctx, job.EmailID, job.Filename)
		if err == nil {
			if attempt := types.LatestAttempt(history); attempt.Completed() {
				result.Skipped = true
				result.Status = attempt.Status
				result.SuccessfulStages = attempt.SuccessfulStages
				emitProgress(opts, job, "", "already completed, skipping")
				return result
			}
		}
	}

	// Classify
	emitProgress(opts, job, types.StageClassify, "classifying document")
	start := time.Now()
	classification, err := e.capability.Classify(ctx, job)
	e.appendRow(ctx, result, job, types.StageClassify, err, start)
	if err != nil {
		result.Status = types.StatusUnknown
		emitProgress(opts, job, types.StageClassify, fmt.Sprintf("classification failed: %v", err))
		return result
	}

	// The verdict write is best-effort: views tolerate a missing verdict,
	// the stage row is the record of what happened.
	if saveErr := e.store.SaveClassification(ctx, job.EmailID, job.Filename, *classification); saveErr != nil {
		result.LogError = saveErr.Error()
	}

	if !classification.IsReceipt {
		result.Status = types.StatusNotReceipt
		emitProgress(opts, job, types.StageClassify,
			fmt.Sprintf("not a receipt (type: %s)", classification.DocumentType))
		return result
	}

	// Extract
	emitProgress(opts, job, types.StageExtract, "extracting receipt fields")
	start = time.Now()
	extraction, err := e.capability.Extract(ctx, job)
	e.appendRow(ctx, result, job, types.StageExtract, err, start)
	if err != nil {
		result.Status = types.StatusClassifiedOnly
		emitProgress(opts, job, types.StageExtract, fmt.Sprintf("extraction failed: %v", err))
		return result
	}

	// Persist
	emitProgress(opts, job, types.StagePersist, "persisting receipt")
	start = time.Now()
	receipt := &types.ReceiptRecord{
		SourceEmailID:   job.EmailID,
		Filename:        job.Filename,
		MerchantName:    extraction.MerchantName,
		TotalAmount:     extraction.TotalAmount,
		TransactionDate: extraction.TransactionDate,
	}
	err = e.store.SaveReceipt(ctx, receipt)
	e.appendRow(ctx, result, job, types.StagePersist, err, start)
	if err != nil {
		result.Status = types.StatusClassifiedOnly
		emitProgress(opts, job, types.StagePersist, fmt.Sprintf("persist failed: %v", err))
		return result
	}

	result.Status = types.StatusCompleted
	emitProgress(opts, job, types.StagePersist,
		fmt.Sprintf("completed: %s %s", extraction.MerchantName, extraction.TotalAmount))
	return result
}

// appendRow records one stage outcome. A failure to write the row is
// reported on the result but does not change the attempt's course; the
// stage outcome itself stands.
func (e *Engine) appendRow(ctx context.Context, result *Result, job types.DocumentJob, stage types.Stage, stageErr error, start time.Time) {
	if stageErr == nil {
		result.SuccessfulStages++
	}

	row := &types.StageLog{
		EmailID:     job.EmailID,
		Filename:    job.Filename,
		Stage:       stage,
		Success:     stageErr == nil,
		DurationMs:  time.Since(start).Milliseconds(),
		ProcessedAt: time.Now().UTC(),
	}
	if stageErr != nil {
		msg := stageErr.Error()
		row.ErrorMessage = &msg
	}

	if err := e.store.AppendStageLog(ctx, row); err != nil {
		result.LogError = err.Error()
		return
	}
	result.Rows = append(result.Rows, *row)
}

func emitProgress(opts Options, job types.DocumentJob, stage types.Stage, message string) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			EmailID:  job.EmailID,
			Filename: job.Filename,
			Stage:    stage,
			Message:  message,
		})
	}
}
