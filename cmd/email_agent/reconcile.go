package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yatharthk2/EmailDemo-sub001/internal/config"
	"github.com/yatharthk2/EmailDemo-sub001/internal/db"
	"github.com/yatharthk2/EmailDemo-sub001/internal/observability"
	"github.com/yatharthk2/EmailDemo-sub001/internal/reconcile"
	"github.com/yatharthk2/EmailDemo-sub001/internal/statement"
)

var reconcileCommand = &cobra.Command{
	Use:   "reconcile",
	Short: "Match stored receipts against a bank statement",
	Long: `Parses a bank statement file (CSV or XLSX), loads stored receipts for the
period, and pairs debit transactions with receipts under date and amount
tolerances. Unparseable statement rows are reported and skipped.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runReconcileCmd,
}

var (
	reconcileConfigPath  string
	reconcileStatement   string
	reconcileFrom        string
	reconcileTo          string
	reconcileTolerance   int
	reconcileEpsilon     string
	reconcileJSON        bool
	reconcileDatabaseURL string
)

func init() {
	// Config file flag (processed first)
	reconcileCommand.Flags().StringVar(&reconcileConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	reconcileCommand.Flags().StringVarP(&reconcileStatement, "statement", "s", "", "Path to the bank statement file (.csv or .xlsx)")
	reconcileCommand.Flags().StringVar(&reconcileFrom, "from", "", "Earliest receipt transaction date, inclusive (YYYY-MM-DD)")
	reconcileCommand.Flags().StringVar(&reconcileTo, "to", "", "Latest receipt transaction date, inclusive (YYYY-MM-DD)")
	reconcileCommand.Flags().IntVar(&reconcileTolerance, "date-tolerance-days", 0, "Posting-date lag window for matching")
	reconcileCommand.Flags().StringVar(&reconcileEpsilon, "amount-epsilon", "", "Absolute amount tolerance for matching, e.g. 0.01")
	reconcileCommand.Flags().BoolVar(&reconcileJSON, "json", false, "Print the report as JSON instead of formatted text")

	// Database URL for loading stored receipts
	reconcileCommand.Flags().StringVar(&reconcileDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(reconcileCommand)
}

func runReconcileCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if reconcileConfigPath != "" {
		loadedCfg, err := config.LoadConfig(reconcileConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("statement") {
		cfg.Statement = reconcileStatement
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = reconcileDatabaseURL
	}

	// Step 3: Build matching tolerances; flags win over config values
	matching := *reconcile.DefaultConfig()
	if cfg.DateToleranceDays > 0 {
		matching.DateToleranceDays = cfg.DateToleranceDays
	}
	if cfg.AmountEpsilon > 0 {
		matching.AmountEpsilon = decimal.NewFromFloat(cfg.AmountEpsilon)
	}
	if cmd.Flags().Changed("date-tolerance-days") {
		matching.DateToleranceDays = reconcileTolerance
	}
	if cmd.Flags().Changed("amount-epsilon") {
		eps, err := decimal.NewFromString(reconcileEpsilon)
		if err != nil {
			return fmt.Errorf("invalid --amount-epsilon %q: %w", reconcileEpsilon, err)
		}
		matching.AmountEpsilon = eps
	}
	if err := matching.Validate(); err != nil {
		return fmt.Errorf("invalid matching config: %w", err)
	}

	// Step 4: Validate required fields
	if cfg.Statement == "" {
		return fmt.Errorf("--statement flag or 'statement' config value is required")
	}

	from, err := parseDateFlag(reconcileFrom)
	if err != nil {
		return fmt.Errorf("invalid --from date %q (expected YYYY-MM-DD)", reconcileFrom)
	}
	to, err := parseDateFlag(reconcileTo)
	if err != nil {
		return fmt.Errorf("invalid --to date %q (expected YYYY-MM-DD)", reconcileTo)
	}

	// Step 5: Database URL handling
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	// Parse the statement before touching the database
	result, err := statement.ParseFile(cfg.Statement)
	if err != nil {
		return fmt.Errorf("failed to parse statement: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	receipts, err := database.ListReceipts(ctx, db.ListReceiptsOptions{
		From:  from,
		To:    to,
		Limit: 10000,
	})
	if err != nil {
		return fmt.Errorf("failed to load receipts: %w", err)
	}

	report := reconcile.NewMatcher(&matching).Match(receipts, result.Transactions)

	if reconcileJSON {
		out := struct {
			Report       *reconcile.Report    `json:"report"`
			RowErrors    []statement.RowError `json:"row_errors,omitempty"`
			Receipts     int                  `json:"receipts"`
			Transactions int                  `json:"transactions"`
		}{report, result.RowErrors, len(receipts), len(result.Transactions)}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Loaded %d receipts and %d statement transactions\n",
		len(receipts), len(result.Transactions))

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintRowErrors(result.RowErrors)
	printer.PrintReport(report)

	return nil
}

// parseDateFlag parses an optional YYYY-MM-DD flag value as a UTC date.
func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
