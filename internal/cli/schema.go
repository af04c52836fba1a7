package cli

import (
	"fmt"
	"strings"

	"kql-assistant-backend/internal/service"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the tables and columns questions are answered against",
	RunE: func(cmd *cobra.Command, args []string) error {
		rendered, err := renderSchema(service.Tables)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func renderSchema(tables []service.TableSchema) (string, error) {
	data := pterm.TableData{{"Table", "Columns"}}
	for _, t := range tables {
		data = append(data, []string{t.Name, strings.Join(t.Columns, ", ")})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
