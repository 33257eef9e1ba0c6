package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"load-mapper/internal/mapping"
	"load-mapper/internal/payload"
	"load-mapper/internal/pipeline"
	"load-mapper/internal/validate"
)

// summary is the JSON form of a validate run.
type summary struct {
	RunID            string              `json:"runId"`
	TotalRows        int                 `json:"totalRows"`
	ValidRows        int                 `json:"validRows"`
	MappingErrors    []string            `json:"mappingErrors"`
	ValidationErrors []validate.RowError `json:"validationErrors"`
}

func (a *app) newValidateCmd() *cobra.Command {
	var mappingPath string

	cmd := &cobra.Command{
		Use:   "validate <input>",
		Short: "Validate an input file against the load schema",
		Long: `Apply a field mapping to an input file and check every row for required
fields, parseable dates and amounts, and allowed enum values. Without
--mapping the suggested mapping is used. Exits non-zero when any row fails.`,
		Example: `  load-mapper validate loads.csv --mapping mapping.yaml
  load-mapper validate loads.csv -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.process(cmd, args[0], mappingPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if a.jsonOutput() {
				if err := writeJSON(out, summary{
					RunID:            res.RunID,
					TotalRows:        res.TotalRows,
					ValidRows:        res.ValidRows,
					MappingErrors:    res.MappingErrors,
					ValidationErrors: res.ValidationErrors,
				}); err != nil {
					return err
				}
			} else {
				renderDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
				renderMappingErrors(out, res.MappingErrors)
				renderRowErrors(out, res.ValidationErrors)
				_, _ = fmt.Fprintf(out, "%d of %d rows valid\n", res.ValidRows, res.TotalRows)
			}

			if invalid := res.TotalRows - res.ValidRows; invalid > 0 {
				return fmt.Errorf("%d of %d rows failed validation", invalid, res.TotalRows)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "field mapping YAML file (default: suggested mapping)")

	return cmd
}

func (a *app) newBuildCmd() *cobra.Command {
	var (
		mappingPath   string
		writePath     string
		showFallbacks bool
	)

	cmd := &cobra.Command{
		Use:   "build <input>",
		Short: "Build load payloads from an input file",
		Long: `Apply a field mapping, validate every row and build one JSON payload per
valid row. Invalid rows are reported and skipped. Values filled in by
default are listed with --fallbacks.

With -o json the full run result is written, including validation errors
and fallbacks; otherwise only the array of payloads.`,
		Example: `  load-mapper build loads.csv --mapping mapping.yaml --write payloads.json
  load-mapper build loads.csv --fallbacks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.process(cmd, args[0], mappingPath)
			if err != nil {
				return err
			}

			var doc any = res
			if !a.jsonOutput() {
				doc = bodies(res.Payloads)
			}

			out := cmd.OutOrStdout()

			if writePath != "" {
				f, err := os.Create(writePath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", writePath, err)
				}
				defer f.Close()

				out = f
			}

			if err := writeJSON(out, doc); err != nil {
				return err
			}

			if a.jsonOutput() {
				return nil
			}

			stderr := cmd.ErrOrStderr()

			renderDiagnostics(stderr, res.Diagnostics)
			renderMappingErrors(stderr, res.MappingErrors)
			renderRowErrors(stderr, res.ValidationErrors)

			if showFallbacks {
				renderFallbacks(stderr, res.Payloads)
			}

			_, _ = fmt.Fprintf(stderr, "Built %d payloads from %d rows\n", len(res.Payloads), res.TotalRows)

			return nil
		},
	}

	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "field mapping YAML file (default: suggested mapping)")
	cmd.Flags().StringVarP(&writePath, "write", "w", "", "write payloads to this file instead of stdout")
	cmd.Flags().BoolVar(&showFallbacks, "fallbacks", false, "list values filled in by default")

	return cmd
}

// process reads the input, resolves the mapping and runs the engine.
func (a *app) process(cmd *cobra.Command, input, mappingPath string) (*pipeline.Result, error) {
	src, err := readTable(input, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}

	var fm *mapping.FieldMapping

	if mappingPath == "" {
		_, fm = a.engine.Suggest(src)
	} else {
		mf, err := mapping.LoadFile(mappingPath)
		if err != nil {
			return nil, err
		}

		fm = mf.Fields
	}

	diags := mapping.Validate(fm, a.engine.Registry())
	if diags.HasErrors() {
		renderDiagnostics(cmd.ErrOrStderr(), diags)
		return nil, fmt.Errorf("invalid mapping: %w", diags.Error())
	}

	return a.engine.Process(src, fm), nil
}

func bodies(payloads []payload.Payload) []*payload.Node {
	out := make([]*payload.Node, len(payloads))
	for i, p := range payloads {
		out[i] = p.Body
	}

	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	return nil
}
