package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kql-assistant-backend/internal/kafka"
	"kql-assistant-backend/internal/model"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tailFromBeginning bool

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded query runs",
}

var runsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow query runs published to the Kafka audit topic",
	Long: `The tail command joins the configured consumer group on the run topic and prints each
recorded run as it arrives. Stop it with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		consumer, err := kafka.NewKafkaRunConsumer(cfg, tailFromBeginning)
		if err != nil {
			return err
		}
		defer func() {
			if err := consumer.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close Kafka run consumer")
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pterm.Info.Printfln("Following %s (group %s)", cfg.Kafka.RunTopic, cfg.Kafka.ConsumerGroup)
		return tailRuns(ctx, cmd.OutOrStdout(), consumer)
	},
}

func init() {
	runsTailCmd.Flags().BoolVar(&tailFromBeginning, "from-beginning", false, "Start a new consumer group at the oldest retained run")
	runsCmd.AddCommand(runsTailCmd)
	rootCmd.AddCommand(runsCmd)
}

func tailRuns(ctx context.Context, out io.Writer, consumer kafka.RunConsumer) error {
	for {
		run, msg, err := consumer.FetchRun(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			if msg.Topic == "" {
				return err
			}
			// Undecodable payload: skip it so the group can move on.
			log.Warn().Err(err).Int64("offset", msg.Offset).Msg("Skipping undecodable run message")
		} else {
			fmt.Fprintln(out, formatRun(*run))
		}
		if err := consumer.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			return err
		}
	}
}

func formatRun(run model.QueryRun) string {
	var outcome string
	switch run.Outcome {
	case model.RunOutcomeSuccess:
		outcome = pterm.FgGreen.Sprint(run.Outcome)
	case model.RunOutcomeEmpty:
		outcome = pterm.FgYellow.Sprint(run.Outcome)
	default:
		outcome = pterm.FgRed.Sprint(run.Outcome)
	}

	line := fmt.Sprintf("%s  %-7s  %5dms  rows=%-4d  [%s] %q",
		run.Time.UTC().Format(time.RFC3339), outcome, run.DurationMs, run.RowCount, run.Source, run.Question)
	if run.Error != "" {
		line += "  error=" + run.Error
	}
	return line
}
