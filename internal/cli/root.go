// Package cli implements the kqlassist terminal client: ask a question, see the
// generated KQL and its results, and follow recorded runs.
package cli

import (
	"errors"
	"fmt"
	"os"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/observability"

	"github.com/spf13/cobra"
)

// errReported signals a failure whose message was already printed.
var errReported = errors.New("reported")

var (
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "kqlassist",
	Short:         "Turn business questions into KQL and run them against Kusto",
	Long:          `kqlassist asks a completion model to write one KQL query for a natural-language question over the Event, Heartbeat and Perf tables, runs it against a Kusto cluster and prints the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.NewConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		logCfg := cfg.Logging
		logCfg.Format = "console"
		if !verbose {
			logCfg.Level = "warn"
		}
		observability.SetupLogging(logCfg)
		return nil
	},
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at the configured LOG_LEVEL instead of warn")
}
