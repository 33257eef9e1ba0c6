package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"load-mapper/internal/schema"
)

type fieldView struct {
	Path         string   `json:"path"`
	Type         string   `json:"type"`
	Required     bool     `json:"required"`
	RequiredWhen string   `json:"requiredWhen,omitempty"`
	Description  string   `json:"description,omitempty"`
	Allowed      []string `json:"allowed,omitempty"`
}

func (a *app) newSchemaCmd() *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "List the target fields of the schema registry",
		Long: `List every target field path with its type, whether it is required and
its allowed values. Use --dump to print the registry document itself, a
starting point for a custom --registry file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if dump {
				doc := schema.DefaultDocument()

				if a.cfg.Registry != "" {
					data, err := os.ReadFile(a.cfg.Registry)
					if err != nil {
						return fmt.Errorf("failed to read registry %s: %w", a.cfg.Registry, err)
					}

					doc = data
				}

				_, err := out.Write(doc)

				return err
			}

			reg := a.engine.Registry()

			if a.jsonOutput() {
				views := make([]fieldView, 0, len(reg.Fields()))
				for _, f := range reg.Fields() {
					views = append(views, fieldView{
						Path:         f.Path,
						Type:         f.Type.String(),
						Required:     f.Required,
						RequiredWhen: f.RequiredWhen,
						Description:  f.Description,
						Allowed:      f.Allowed,
					})
				}

				return writeJSON(out, views)
			}

			renderFields(out, reg)

			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "print the registry YAML document")

	return cmd
}
