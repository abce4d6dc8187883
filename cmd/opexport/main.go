// Package main provides the entry point for the opexport CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	Version   = "0.1.0-edge"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "opexport",
	Short: "Export vault items to unencrypted JSON",
	Long: `opexport exports every item from a password manager vault by driving
the op command-line tool, collecting the results into a single
unencrypted JSON file.

The op binary must already hold a signed-in session (run "op signin"
first); opexport never handles credentials itself. Items that fail to
fetch are reported at the end of the run without aborting the export.

Examples:
  # Export the whole vault
  opexport export -o vault.json

  # Use a specific op binary and fetch in parallel
  opexport export --op /opt/1password/op --concurrency 4 -o vault.json

  # Retry flaky fetches with backoff, pacing calls to 2 per second
  opexport export --retries 4 --rate 2 -o vault.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
