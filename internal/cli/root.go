// Package cli provides the load-mapper command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"load-mapper/internal/config"
	"load-mapper/internal/logging"
	"load-mapper/internal/pipeline"
	"load-mapper/internal/schema"
	"load-mapper/internal/table"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// app carries what the commands share after flags are parsed.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	engine  *pipeline.Engine
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "load-mapper",
		Short: "Map freight spreadsheets onto the load schema",
		Long: `load-mapper matches the columns of a freight shipment file to the fields
of the target load schema, validates the mapped rows and builds one nested
JSON payload per valid row.`,
		Version:           Version,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./load-mapper.yaml)")
	flags.String("registry", "", "schema registry file replacing the built-in one")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	flags.StringP("output", "o", "", "output format: text or json")
	flags.Int("sample-size", 0, "sample values inspected per column")
	flags.Int("chunk-size", 0, "rows validated per batch")
	flags.Int("workers", 0, "batches validated in parallel")

	rootCmd.AddCommand(a.newSuggestCmd())
	rootCmd.AddCommand(a.newValidateCmd())
	rootCmd.AddCommand(a.newBuildCmd())
	rootCmd.AddCommand(a.newSchemaCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "help", "version", "completion", "__complete":
		return nil
	}

	cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	if cfg.File != "" {
		logger.Debug("config loaded", zap.String("file", cfg.File))
	}

	reg, err := loadRegistry(cfg.Registry)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.engine = pipeline.NewEngine(reg, cfg.Engine(), logger)

	return nil
}

func (a *app) jsonOutput() bool {
	return a.cfg.Output == config.OutputJSON
}

func loadRegistry(path string) (*schema.Registry, error) {
	if path == "" {
		return schema.Default()
	}

	return schema.LoadFile(path)
}

// readTable reads a CSV or JSON input file; "-" reads CSV from in.
func readTable(path string, in io.Reader) (*table.Table, error) {
	if path == "-" {
		return table.ReadCSV(in)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return table.ReadJSON(f)
	}

	return table.ReadCSV(f)
}
