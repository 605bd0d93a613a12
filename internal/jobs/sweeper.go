// Package jobs schedules background work for the email agent.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yatharthk2/EmailDemo-sub001/internal/ingest"
	"github.com/yatharthk2/EmailDemo-sub001/internal/pipeline"
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// Defaults for the inbox sweep schedule.
const (
	DefaultSchedule = "*/15 * * * *"
	DefaultTimeout  = 10 * time.Minute
)

// Config holds sweep scheduling configuration.
type Config struct {
	// Schedule is a cron expression in the configured timezone
	Schedule string
	// Timezone is an IANA zone name; unknown or empty means UTC
	Timezone string
	// Timeout bounds one sweep end to end
	Timeout time.Duration
}

// Processor runs document batches through the stage pipeline.
type Processor interface {
	ProcessBatch(ctx context.Context, jobs []types.DocumentJob, opts pipeline.Options) (*pipeline.BatchSummary, error)
}

// Sweeper periodically collects the inbox and runs every document through
// the pipeline. Documents whose latest attempt completed are skipped by the
// engine, so repeated sweeps only pay for new mail.
type Sweeper struct {
	engine Processor
	source ingest.Source
	cfg    Config
	cron   *cron.Cron
}

// NewSweeper creates a sweeper, applying schedule defaults
func NewSweeper(engine Processor, source ingest.Source, cfg Config) *Sweeper {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Sweeper{engine: engine, source: source, cfg: cfg}
}

// Start schedules the sweep and begins the cron loop.
func (s *Sweeper) Start() error {
	loc := time.UTC
	if s.cfg.Timezone != "" {
		parsed, err := time.LoadLocation(s.cfg.Timezone)
		if err != nil {
			log.Printf("Unknown timezone %q, using UTC", s.cfg.Timezone)
		} else {
			loc = parsed
		}
	}

	s.cron = cron.New(cron.WithLocation(loc))
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		summary, err := s.SweepOnce(context.Background())
		if err != nil {
			log.Printf("Inbox sweep failed: %v", err)
			return
		}
		log.Printf("Inbox sweep: %d documents (%d completed, %d not receipts, %d skipped)",
			summary.Total, summary.Completed, summary.NotReceipt, summary.Skipped)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule inbox sweep: %w", err)
	}

	s.cron.Start()
	log.Printf("Inbox sweep scheduled: %s (%s)", s.cfg.Schedule, loc)
	return nil
}

// Stop halts the cron loop. A sweep already running is left to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// SweepOnce collects the inbox and processes every document immediately.
// Messages that fail to parse are logged and skipped; they never abort the
// sweep.
func (s *Sweeper) SweepOnce(ctx context.Context) (*pipeline.BatchSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	docs, ingestErrs := ingest.CollectJobs(ctx, s.source)
	for _, err := range ingestErrs {
		log.Printf("Ingest: %v", err)
	}
	if len(docs) == 0 {
		return &pipeline.BatchSummary{}, nil
	}

	return s.engine.ProcessBatch(ctx, docs, pipeline.Options{})
}
