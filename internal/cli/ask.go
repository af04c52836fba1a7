package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/audit"
	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/filestate"
	"kql-assistant-backend/internal/kafka"
	"kql-assistant-backend/internal/kusto"
	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/service"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	msgNoResult   = "An error occurred while executing the Kusto query."
	msgNeedTarget = "Enter a Kusto cluster URL and database name (--cluster, --database) to run a question."
)

type askOptions struct {
	Question   string
	Cluster    string
	Database   string
	ShowQuery  bool
	ShowPrompt bool
	Advanced   bool
}

var askOpts askOptions

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Generate a KQL query for a question and run it",
	Long: `The ask command builds a prompt from your question and the Event, Heartbeat and Perf
schema, asks the completion model for one KQL query and runs it verbatim against the
selected cluster and database.

The generated query is not validated before it runs. Point it at a database where the
configured identity only has read access.

Cluster and database fall back to the values used on the last successful run, then to
KUSTO_CLUSTER and KUSTO_DATABASE.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := askOpts
		opts.Question = strings.Join(args, " ")

		newService := func() (service.KQLService, func(), error) { return newCLIKQLService(cfg) }
		return runAsk(cmd.Context(), cmd.OutOrStdout(), newService, filestate.NewManager(cfg.CLI.StatePath), cfg.Kusto, opts)
	},
}

func init() {
	askCmd.Flags().StringVar(&askOpts.Cluster, "cluster", "", "Kusto cluster URL")
	askCmd.Flags().StringVar(&askOpts.Database, "database", "", "Kusto database name")
	askCmd.Flags().BoolVar(&askOpts.ShowQuery, "show-query", false, "Print the generated KQL query")
	askCmd.Flags().BoolVar(&askOpts.ShowPrompt, "show-prompt", false, "Print the prompt sent to the completion model")
	askCmd.Flags().BoolVar(&askOpts.Advanced, "advanced", false, "Plot Value over Date when the result has both columns")
	rootCmd.AddCommand(askCmd)
}

// newCLIKQLService wires the pipeline for a single CLI invocation. Runs are
// audited to Kafka when that sink is enabled; the returned func flushes it.
func newCLIKQLService(cfg *config.Config) (service.KQLService, func(), error) {
	generator, err := service.NewOpenAIQueryGenerator(cfg)
	if err != nil {
		return nil, nil, err
	}
	executor := kusto.NewManagedIdentityExecutor(cfg)

	recorder := audit.NopRecorder()
	closeFn := func() {}
	if cfg.AuditSinkEnabled(config.AuditSinkKafka) {
		producer, err := kafka.NewRunProducer(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Kafka audit sink unavailable, runs will not be recorded")
		} else {
			recorder = audit.NewRecorder(producer)
			closeFn = func() {
				if err := producer.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to flush Kafka run producer")
				}
			}
		}
	}
	return service.NewKQLService(generator, executor, recorder, cfg), closeFn, nil
}

// serviceFactory builds the pipeline. runAsk calls it only once it knows the
// question has somewhere to run.
type serviceFactory func() (service.KQLService, func(), error)

func runAsk(ctx context.Context, out io.Writer, newService serviceFactory, state filestate.Manager, defaults config.KustoConfig, opts askOptions) error {
	saved, err := state.LoadState()
	if err != nil {
		log.Warn().Err(err).Str("file", state.GetStateFilePath()).Msg("Ignoring unreadable CLI state")
	}
	cluster := firstNonEmpty(opts.Cluster, saved.Cluster, defaults.Cluster)
	database := firstNonEmpty(opts.Database, saved.Database, defaults.Database)

	if cluster == "" || database == "" {
		fmt.Fprintln(out, msgNeedTarget)
		return nil
	}
	if opts.Question == "" {
		fmt.Fprintln(out, "Enter your business question, e.g. kqlassist ask \"show top 10 computers by CPU usage\"")
		return nil
	}

	svc, closeFn, err := newService()
	if err != nil {
		fmt.Fprintln(out, "An error occurred: "+err.Error())
		return errReported
	}
	defer closeFn()

	answer, err := svc.Answer(ctx, dto.KQLQueryRequest{
		Question: opts.Question,
		Cluster:  cluster,
		Database: database,
		Source:   model.RunSourceCLI,
	})
	if err != nil {
		fmt.Fprintln(out, "An error occurred: "+err.Error())
		return errReported
	}

	if opts.ShowPrompt {
		fmt.Fprintln(out, heading("Prompt:"))
		fmt.Fprintln(out, answer.Prompt)
	}
	if opts.ShowQuery {
		fmt.Fprintln(out, heading("Generated KQL Query:"))
		fmt.Fprintln(out, answer.Query)
	}

	if answer.Table == nil {
		fmt.Fprintln(out, msgNoResult)
		return nil
	}

	fmt.Fprintln(out, heading("Query Results:"))
	rendered, err := renderTable(answer.Table)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, rendered)

	if opts.Advanced {
		fmt.Fprintln(out, heading("Advanced Analysis:"))
		if plot, ok := renderPlot(answer.Table); ok {
			fmt.Fprintln(out, plot)
		} else {
			fmt.Fprintln(out, "The result needs numeric Value and Date columns to plot data over time.")
		}
	}

	if err := state.SaveState(filestate.CLIState{Cluster: cluster, Database: database}); err != nil {
		log.Warn().Err(err).Msg("Failed to save CLI state")
	}
	return nil
}

func heading(s string) string {
	return pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
