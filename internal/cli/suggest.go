package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"load-mapper/internal/mapping"
	"load-mapper/internal/plan"
)

func (a *app) newSuggestCmd() *cobra.Command {
	var (
		writePath string
		plain     bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <input>",
		Short: "Suggest a field mapping for an input file",
		Long: `Score every column of a CSV or JSON file against the load schema and
print the suggested field mapping. Use --write to save the mapping as YAML
for review; the saved file is accepted by validate and build.`,
		Example: `  load-mapper suggest loads.csv
  load-mapper suggest loads.csv --write mapping.yaml
  load-mapper suggest loads.json -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readTable(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			analysis, fm := a.engine.Suggest(src)
			report := plan.GenerateReport(fm, analysis)

			if writePath != "" {
				if err := mapping.WriteFile(mapping.NewFile(fm), writePath); err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Mapping written to %s\n", writePath)
			}

			out := cmd.OutOrStdout()

			switch {
			case a.jsonOutput():
				data, err := report.JSON()
				if err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}

				_, err = fmt.Fprintln(out, string(data))

				return err
			case plain:
				_, err := fmt.Fprint(out, plan.FormatReport(report))
				return err
			default:
				renderReport(out, report)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&writePath, "write", "w", "", "write the suggested mapping to this YAML file")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the report as plain text instead of tables")

	return cmd
}
