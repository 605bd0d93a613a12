package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yatharthk2/EmailDemo-sub001/internal/capability"
	"github.com/yatharthk2/EmailDemo-sub001/internal/config"
	"github.com/yatharthk2/EmailDemo-sub001/internal/db"
	"github.com/yatharthk2/EmailDemo-sub001/internal/ingest"
	"github.com/yatharthk2/EmailDemo-sub001/internal/observability"
	"github.com/yatharthk2/EmailDemo-sub001/internal/pipeline"
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

var processCommand = &cobra.Command{
	Use:   "process [eml-files...]",
	Short: "Run inbox documents through the processing pipeline",
	Long: `Classifies each document, extracts receipt fields from receipts, and persists the results: classify -> extract -> persist.

With file arguments, only those .eml messages are processed. Without arguments
the configured inbox directory is swept. Configuration can be loaded from a
JSON file using --config. Command-line arguments override config file values.`,
	RunE: runProcessCmd,
}

var (
	processConfigPath  string
	processInbox       string
	processWorkers     int
	processTimeout     int
	processForce       bool
	processVerbose     bool
	processAPIKey      string
	processDatabaseURL string
)

func init() {
	// Config file flag (processed first)
	processCommand.Flags().StringVar(&processConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	processCommand.Flags().StringVarP(&processInbox, "inbox", "i", "", "Directory of raw .eml messages to ingest")
	processCommand.Flags().IntVar(&processWorkers, "workers", 0, "Maximum documents processed concurrently")
	processCommand.Flags().IntVar(&processTimeout, "capability-timeout", 0, "Per-call classifier/extractor timeout in seconds")
	processCommand.Flags().BoolVarP(&processForce, "force", "f", false, "Reprocess documents whose latest attempt already completed")
	processCommand.Flags().BoolVarP(&processVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	processCommand.Flags().StringVar(&processAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for receipt persistence
	processCommand.Flags().StringVar(&processDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(processCommand)
}

func runProcessCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if processConfigPath != "" {
		loadedCfg, err := config.LoadConfig(processConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if processVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", processConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("inbox") {
		cfg.Inbox = processInbox
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = processWorkers
	}
	if cmd.Flags().Changed("capability-timeout") {
		cfg.CapabilityTimeoutSeconds = processTimeout
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = processVerbose
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = processAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = processDatabaseURL
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		Workers:                  pipeline.DefaultWorkers,
		CapabilityTimeoutSeconds: int(capability.DefaultTimeout / time.Second),
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Validate required fields
	if len(args) == 0 && cfg.Inbox == "" {
		return fmt.Errorf("either .eml file arguments or --inbox must be provided (via flag or config)")
	}

	// Step 5: API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Step 6: Database URL handling (required for stage logs and receipts)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	// Collect document jobs before touching any backend; a broken message
	// is reported and skipped, it never aborts the run.
	docs, ingestErrs := collectDocuments(ctx, args, cfg.Inbox)
	for _, err := range ingestErrs {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found to process")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	capCfg := capability.DefaultConfig()
	if cfg.CapabilityTimeoutSeconds > 0 {
		capCfg.Timeout = time.Duration(cfg.CapabilityTimeoutSeconds) * time.Second
	}
	client, err := capability.NewClient(ctx, capCfg, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create capability client: %w", err)
	}
	defer func() { _ = client.Close() }()

	engine := pipeline.NewEngine(client, database, cfg.Workers)

	opts := pipeline.Options{Force: processForce}
	if cfg.Verbose {
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(os.Stdout, "  [%s] %s/%s: %s\n", event.Stage, event.EmailID, event.Filename, event.Message)
		}
	}

	summary, err := engine.ProcessBatch(ctx, docs, opts)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		for _, result := range summary.Results {
			view, err := database.LatestView(ctx, result.EmailID, result.Filename)
			if err != nil || view == nil {
				continue
			}
			printer.PrintProcessedView(view)
		}
	}
	printer.PrintBatchSummary(summary)

	return nil
}

// collectDocuments builds document jobs from explicit .eml paths, or from the
// inbox directory when no paths are given.
func collectDocuments(ctx context.Context, paths []string, inbox string) ([]types.DocumentJob, []error) {
	if len(paths) == 0 {
		return ingest.CollectJobs(ctx, ingest.NewDirSource(inbox))
	}

	var docs []types.DocumentJob
	var errs []error
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to open %s: %w", path, err))
			continue
		}

		email, err := ingest.ParseEmail(f)
		_ = f.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("message %s: %w", path, err))
			continue
		}

		docs = append(docs, ingest.JobsFromEmail(email)...)
	}
	return docs, errs
}
