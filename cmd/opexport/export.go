package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nvinuesa/opexport/internal/config"
	"github.com/nvinuesa/opexport/internal/export"
	"github.com/nvinuesa/opexport/internal/logging"
	"github.com/nvinuesa/opexport/internal/op"
)

var exportFlags struct {
	op          string
	output      string
	configPath  string
	concurrency int
	retries     int
	rate        float64
	sortByID    bool
	dryRun      bool
	quiet       bool
	logLevel    string
	logFormat   string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all vault items to a JSON file",
	Long: `Export every item in the vault to a single JSON file.

The export command lists all item ids via the op tool, fetches each item's
full detail, and writes the successfully fetched items as a JSON array in
listing order. Items that fail to fetch are listed with their reasons on
stderr; partial failure does not abort the run and the command still
exits zero.

The exit status is non-zero only when the listing step or the final file
write fails.

Examples:
  # Export to vault.json
  opexport export -o vault.json

  # Sort the output by item id
  opexport export --sort-by-id -o vault.json

  # Check vault health without writing anything
  opexport export --dry-run -o /dev/null`,
	RunE: runExport,
}

func init() {
	addExportFlags(exportCmd)
}

// addExportFlags registers the export flag set on cmd. Kept separate from
// init so tests can build a command with fresh flag state.
func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&exportFlags.op, "op", "", "Path of the op binary to use (default: op)")
	cmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "Output file path for the JSON export (required)")
	cmd.Flags().StringVar(&exportFlags.configPath, "config", "", "YAML config file path")
	cmd.Flags().IntVar(&exportFlags.concurrency, "concurrency", 1, "Number of parallel fetch workers")
	cmd.Flags().IntVar(&exportFlags.retries, "retries", 0, "Extra attempts per failed fetch, with backoff")
	cmd.Flags().Float64Var(&exportFlags.rate, "rate", 0, "Max fetch invocations per second (0 = unlimited)")
	cmd.Flags().BoolVar(&exportFlags.sortByID, "sort-by-id", false, "Sort output by item id instead of listing order")
	cmd.Flags().BoolVar(&exportFlags.dryRun, "dry-run", false, "Fetch and summarize, but write no output file")
	cmd.Flags().BoolVarP(&exportFlags.quiet, "quiet", "q", false, "Suppress progress and summary output")
	cmd.Flags().StringVar(&exportFlags.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&exportFlags.logFormat, "log-format", "", "Log format (text|json)")
}

// buildConfig merges the optional config file with command-line flags.
// Flags the user set explicitly always win over file values.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if exportFlags.configPath != "" {
		var err error
		cfg, err = config.Load(exportFlags.configPath)
		if err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("op") {
		cfg.Op = exportFlags.op
	}
	if flags.Changed("output") {
		cfg.Output = exportFlags.output
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = exportFlags.concurrency
	}
	if flags.Changed("retries") {
		cfg.Retries = exportFlags.retries
	}
	if flags.Changed("rate") {
		cfg.Rate = exportFlags.rate
	}
	if flags.Changed("sort-by-id") {
		cfg.SortByID = exportFlags.sortByID
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = exportFlags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = exportFlags.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Output == "" {
		return cfg, fmt.Errorf("output path is required")
	}

	return cfg, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logLevel := cfg.LogLevel
	if exportFlags.quiet {
		logLevel = "error"
	}
	logger := logging.New(logLevel, cfg.LogFormat, os.Stderr).
		With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := op.NewCLI(cfg.Op,
		op.WithRetries(cfg.Retries),
		op.WithLogger(logger),
	)

	opts := export.Options{
		Concurrency: cfg.Concurrency,
		RatePerSec:  cfg.Rate,
		SortByID:    cfg.SortByID,
		Logger:      logger,
	}

	// Progress only makes sense on an interactive terminal.
	if !exportFlags.quiet && term.IsTerminal(int(os.Stderr.Fd())) {
		opts.Progress = export.NewProgress(os.Stderr)
	}

	result, err := export.Run(ctx, client, opts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if !exportFlags.quiet {
		printExportSummary(result)
	}

	if exportFlags.dryRun {
		if !exportFlags.quiet {
			fmt.Fprintln(os.Stderr, "\n[Dry run - no output written]")
		}
		return nil
	}

	if err := export.WriteFile(cfg.Output, result.Items); err != nil {
		return err
	}

	if !exportFlags.quiet {
		fmt.Fprintf(os.Stderr, "\n%d items written to: %s\n", len(result.Items), cfg.Output)
	}

	// Per-item failures are reported above but are not fatal.
	return nil
}

func printExportSummary(result *export.Result) {
	fmt.Fprintf(os.Stderr, "\nItems: %d attempted, %d succeeded\n",
		result.Attempted(), result.Succeeded())

	if len(result.Failures) == 0 {
		return
	}

	fmt.Fprintf(os.Stderr, "Failed items (%d):\n", len(result.Failures))
	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "  - %s: %s\n", failure.ID, failure.Reason)
	}
}
