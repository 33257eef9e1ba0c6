// Package config loads load-mapper settings.
//
// Sources are layered, later ones winning:
//  1. built-in defaults
//  2. YAML config file (--config, or load-mapper.yaml in the working directory)
//  3. LOADMAP_* environment variables
//  4. command-line flags that were explicitly set
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"load-mapper/internal/match"
	"load-mapper/internal/pipeline"
	"load-mapper/internal/validate"
	"load-mapper/utils"
)

// EnvPrefix prefixes every environment variable read. A double underscore
// separates nested keys: LOADMAP_VALIDATION__CHUNK_SIZE.
const EnvPrefix = "LOADMAP_"

// Accepted values.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	OutputText    = "text"
	OutputJSON    = "json"
)

// DefaultFileNames are looked up in the working directory when no config
// file is given.
var DefaultFileNames = []string{"load-mapper.yaml", "load-mapper.yml"}

// flagKeys maps flag names whose config key is not the snake_case name.
var flagKeys = map[string]string{
	"sample-size": "analyzer.sample_size",
	"chunk-size":  "validation.chunk_size",
	"workers":     "validation.workers",
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all load-mapper settings.
type Config struct {
	// Registry is a schema registry file replacing the embedded one.
	Registry   string          `koanf:"registry"`
	LogLevel   string          `koanf:"log_level"`
	LogFormat  string          `koanf:"log_format"`
	Output     string          `koanf:"output"`
	Analyzer   match.Config    `koanf:"analyzer"`
	Validation validate.Config `koanf:"validation"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:   "warn",
		LogFormat:  FormatConsole,
		Output:     OutputText,
		Analyzer:   match.DefaultConfig(),
		Validation: validate.DefaultConfig(),
	}
}

// Engine returns the pipeline settings.
func (c *Config) Engine() pipeline.Config {
	return pipeline.Config{Analyzer: c.Analyzer, Validation: c.Validation}
}

// Load reads the configuration. cfgFile may be empty; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}

			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.File = used

	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}

	if !slices.Contains([]string{FormatJSON, FormatConsole}, c.LogFormat) {
		return fmt.Errorf("%w: log_format must be %s or %s, got %q",
			ErrInvalidConfig, FormatJSON, FormatConsole, c.LogFormat)
	}

	if !slices.Contains([]string{OutputText, OutputJSON}, c.Output) {
		return fmt.Errorf("%w: output must be %s or %s, got %q",
			ErrInvalidConfig, OutputText, OutputJSON, c.Output)
	}

	if c.Analyzer.SampleSize <= 0 {
		return fmt.Errorf("%w: analyzer.sample_size must be positive", ErrInvalidConfig)
	}

	if !utils.IsInRange(0, c.Analyzer.MinCandidate, 1) || !utils.IsInRange(0, c.Analyzer.AcceptThreshold, 1) {
		return fmt.Errorf("%w: analyzer thresholds must lie in [0, 1]", ErrInvalidConfig)
	}

	if c.Analyzer.AcceptThreshold <= c.Analyzer.MinCandidate {
		return fmt.Errorf("%w: analyzer.accept_threshold must exceed analyzer.min_candidate", ErrInvalidConfig)
	}

	if c.Validation.ChunkSize <= 0 {
		return fmt.Errorf("%w: validation.chunk_size must be positive", ErrInvalidConfig)
	}

	if c.Validation.Workers <= 0 {
		return fmt.Errorf("%w: validation.workers must be positive", ErrInvalidConfig)
	}

	return nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	for _, name := range DefaultFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	return ""
}

// envKey turns LOADMAP_VALIDATION__CHUNK_SIZE into validation.chunk_size.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}

	return strings.ReplaceAll(name, "-", "_")
}

func defaults() map[string]any {
	d := Default()
	w := d.Analyzer.Weights

	return map[string]any{
		"registry":   d.Registry,
		"log_level":  d.LogLevel,
		"log_format": d.LogFormat,
		"output":     d.Output,

		"analyzer.sample_size":      d.Analyzer.SampleSize,
		"analyzer.min_candidate":    d.Analyzer.MinCandidate,
		"analyzer.accept_threshold": d.Analyzer.AcceptThreshold,

		"analyzer.weights.regex":           w.Regex,
		"analyzer.weights.alias_exact":     w.AliasExact,
		"analyzer.weights.alias_partial":   w.AliasPartial,
		"analyzer.weights.value_pattern":   w.ValuePattern,
		"analyzer.weights.enum_value":      w.EnumValue,
		"analyzer.weights.unit":            w.Unit,
		"analyzer.weights.exclude_token":   w.ExcludeToken,
		"analyzer.weights.exclude_pattern": w.ExcludePattern,
		"analyzer.weights.exclude_sample":  w.ExcludeSample,
		"analyzer.weights.numeric_strong":  w.NumericStrong,
		"analyzer.weights.numeric_weak":    w.NumericWeak,
		"analyzer.weights.numeric_penalty": w.NumericPenalty,
		"analyzer.weights.priority":        w.Priority,

		"validation.chunk_size": d.Validation.ChunkSize,
		"validation.workers":    d.Validation.Workers,
	}
}
