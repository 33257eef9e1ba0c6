package validate

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"load-mapper/internal/format"
	"load-mapper/internal/schema"
	"load-mapper/internal/table"
)

// DefaultChunkSize is the number of rows validated per batch.
const DefaultChunkSize = 1000

// Config controls batching.
type Config struct {
	ChunkSize int `koanf:"chunk_size" yaml:"chunk_size"`
	Workers   int `koanf:"workers" yaml:"workers"`
}

// DefaultConfig returns sequential validation in batches of DefaultChunkSize.
func DefaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		Workers:   1,
	}
}

// RowError lists every problem found on one row.
type RowError struct {
	// Row is the 1-based position of the row in the validated table.
	Row    int        `json:"row"`
	Errors []string   `json:"errors"`
	Data   *table.Row `json:"data"`
}

// Validator checks rows against the registry. It is safe for concurrent use.
type Validator struct {
	reg       *schema.Registry
	formatter *format.Formatter
	cfg       Config
	logger    *zap.Logger
}

// NewValidator creates a new Validator. Non-positive config values fall
// back to the defaults. A nil logger disables logging.
func NewValidator(reg *schema.Registry, cfg Config, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &Validator{
		reg:       reg,
		formatter: format.NewFormatter(reg),
		cfg:       cfg,
		logger:    logger,
	}
}

type batchResult struct {
	valid  []*table.Row
	errors []RowError
}

// Validate splits t into valid rows and row errors. The two are disjoint
// and together cover every row.
func (v *Validator) Validate(t *table.Table) (*table.Table, []RowError) {
	valid := table.New(t.Columns...)
	total := t.Len()

	if total == 0 {
		return valid, nil
	}

	required := v.reg.RequiredFields(t.Columns)
	batches := (total + v.cfg.ChunkSize - 1) / v.cfg.ChunkSize
	results := make([]batchResult, batches)

	var g errgroup.Group

	g.SetLimit(v.cfg.Workers)

	for b := range batches {
		start := b * v.cfg.ChunkSize
		chunk := t.Slice(start, start+v.cfg.ChunkSize)

		g.Go(func() error {
			v.logger.Debug("validating chunk",
				zap.Int("chunk", b+1),
				zap.Int("chunks", batches),
				zap.Int("rows", chunk.Len()))

			results[b] = v.validateChunk(chunk, start, required)

			return nil
		})
	}

	_ = g.Wait()

	var errs []RowError

	for _, res := range results {
		valid.Rows = append(valid.Rows, res.valid...)
		errs = append(errs, res.errors...)
	}

	v.logger.Info("validation finished",
		zap.Int("rows", total),
		zap.Int("valid", valid.Len()),
		zap.Int("invalid", len(errs)))

	return valid, errs
}

func (v *Validator) validateChunk(chunk *table.Table, offset int, required []schema.Field) batchResult {
	var res batchResult

	for i, row := range chunk.Rows {
		problems := v.CheckRow(row, required)
		if len(problems) == 0 {
			res.valid = append(res.valid, row)
			continue
		}

		res.errors = append(res.errors, RowError{
			Row:    offset + i + 1,
			Errors: problems,
			Data:   row,
		})
	}

	return res
}

// CheckRow returns the problems found on one row, given the fields the row
// must carry.
func (v *Validator) CheckRow(row *table.Row, required []schema.Field) []string {
	var problems []string

	for _, f := range required {
		if table.IsBlank(row.Value(f.Path)) {
			problems = append(problems,
				fmt.Sprintf("Missing required field: %s (%s)", f.Path, v.reg.Description(f.Path)))
		}
	}

	checks := v.reg.Validation()

	for _, path := range checks.DateFields {
		raw := row.Value(path)
		if table.IsBlank(raw) {
			continue
		}

		if _, ok := format.ParseTime(raw); !ok {
			problems = append(problems,
				fmt.Sprintf("Invalid date format for %s: %s", path, table.String(raw)))
		}
	}

	for _, path := range checks.NumericFields {
		raw := row.Value(path)
		if table.IsBlank(raw) {
			continue
		}

		s := strings.TrimSpace(table.String(raw))
		if v.reg.IsEnumLiteral(s) || format.IsNumeric(raw) {
			continue
		}

		problems = append(problems, fmt.Sprintf("Invalid numeric value for %s: %s", path, s))
	}

	for _, path := range row.Keys() {
		field, ok := v.reg.Field(path)
		if !ok || !field.IsEnum() {
			continue
		}

		raw := row.Value(path)
		if table.IsBlank(raw) {
			continue
		}

		formatted, _ := v.formatter.Format(path, raw).(string)
		if slices.Contains(field.Allowed, formatted) {
			continue
		}

		problems = append(problems, fmt.Sprintf("Invalid value for %s: '%s'. Expected one of: %s",
			path, table.String(raw), strings.Join(field.Allowed, ", ")))
	}

	return problems
}
