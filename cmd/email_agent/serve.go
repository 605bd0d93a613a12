package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yatharthk2/EmailDemo-sub001/internal/capability"
	"github.com/yatharthk2/EmailDemo-sub001/internal/config"
	"github.com/yatharthk2/EmailDemo-sub001/internal/jobs"
	"github.com/yatharthk2/EmailDemo-sub001/internal/reconcile"
	"github.com/yatharthk2/EmailDemo-sub001/internal/server"
)

var (
	serveConfigPath string
	servePort       int
	serveInbox      string
	serveWorkers    int
	serveSweep      bool
	serveSchedule   string
	serveTimezone   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for document processing, stage-log inspection, receipts and bank reconciliation.

With --sweep the server also collects and processes the inbox on a schedule.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveInbox, "inbox", "", "Directory of raw .eml messages to ingest")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Maximum documents processed concurrently")
	serveCmd.Flags().BoolVar(&serveSweep, "sweep", false, "Collect and process the inbox on a schedule")
	serveCmd.Flags().StringVar(&serveSchedule, "sweep-schedule", "", "Cron expression for the inbox sweep")
	serveCmd.Flags().StringVar(&serveTimezone, "timezone", "", "IANA timezone for the sweep schedule")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file if provided
	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("inbox") {
		cfg.Inbox = serveInbox
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = serveWorkers
	}
	if cmd.Flags().Changed("sweep-schedule") {
		cfg.SweepSchedule = serveSchedule
	}
	if cmd.Flags().Changed("timezone") {
		cfg.Timezone = serveTimezone
	}

	// Step 3: Connection values come from the environment
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	// Step 4: Validate required fields
	if cfg.Inbox == "" {
		return fmt.Errorf("--inbox flag or 'inbox' config value is required")
	}

	matching := *reconcile.DefaultConfig()
	if cfg.DateToleranceDays > 0 {
		matching.DateToleranceDays = cfg.DateToleranceDays
	}
	if cfg.AmountEpsilon > 0 {
		matching.AmountEpsilon = decimal.NewFromFloat(cfg.AmountEpsilon)
	}

	serverCfg := server.Config{
		Port:        servePort,
		DatabaseURL: cfg.DatabaseURL,
		APIKey:      cfg.APIKey,
		InboxDir:    cfg.Inbox,
		Workers:     cfg.Workers,
		Matching:    matching,
	}
	if cfg.CapabilityTimeoutSeconds > 0 {
		capCfg := capability.DefaultConfig()
		capCfg.Timeout = time.Duration(cfg.CapabilityTimeoutSeconds) * time.Second
		serverCfg.Capability = capCfg
	}
	if serveSweep || cfg.SweepSchedule != "" {
		serverCfg.Sweep = &jobs.Config{
			Schedule: cfg.SweepSchedule,
			Timezone: cfg.Timezone,
		}
	}

	srv, err := server.New(serverCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
