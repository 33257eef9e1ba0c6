package pipeline

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"load-mapper/internal/apply"
	"load-mapper/internal/diagnostic"
	"load-mapper/internal/mapping"
	"load-mapper/internal/match"
	"load-mapper/internal/payload"
	"load-mapper/internal/plan"
	"load-mapper/internal/schema"
	"load-mapper/internal/table"
	"load-mapper/internal/validate"
)

// Config groups the tunables of every stage.
type Config struct {
	Analyzer   match.Config    `koanf:"analyzer" yaml:"analyzer"`
	Validation validate.Config `koanf:"validation" yaml:"validation"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Analyzer:   match.DefaultConfig(),
		Validation: validate.DefaultConfig(),
	}
}

// Result is the outcome of processing one table.
type Result struct {
	RunID            string                  `json:"runId"`
	MappingErrors    []string                `json:"mappingErrors"`
	ValidationErrors []validate.RowError     `json:"validationErrors"`
	Payloads         []payload.Payload       `json:"payloads"`
	Diagnostics      *diagnostic.Diagnostics `json:"-"`
	TotalRows        int                     `json:"totalRows"`
	ValidRows        int                     `json:"validRows"`
}

// Engine runs the analyze, resolve, apply, validate and build stages
// against one registry. It is safe for concurrent use.
type Engine struct {
	reg       *schema.Registry
	cfg       Config
	analyzer  *match.Analyzer
	resolver  *plan.Resolver
	applier   *apply.Applier
	validator *validate.Validator
	builder   *payload.Builder
	logger    *zap.Logger
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(reg *schema.Registry, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		reg:       reg,
		cfg:       cfg,
		analyzer:  match.NewAnalyzer(reg, cfg.Analyzer, logger.Named("match")),
		resolver:  plan.NewResolver(reg, logger.Named("plan")),
		applier:   apply.NewApplier(logger.Named("apply")),
		validator: validate.NewValidator(reg, cfg.Validation, logger.Named("validate")),
		builder:   payload.NewBuilder(reg, logger.Named("payload")),
		logger:    logger,
	}
}

// Registry returns the engine's schema registry.
func (e *Engine) Registry() *schema.Registry {
	return e.reg
}

// Suggest analyzes the columns of t and returns the analysis with the
// resolved field mapping.
func (e *Engine) Suggest(t *table.Table) (*match.Analysis, *mapping.FieldMapping) {
	samples := table.Samples(t, e.sampleSize())

	analysis := e.analyzer.Analyze(t.Columns, samples)
	fm := e.resolver.Resolve(plan.FromSuggestions(analysis.Suggestions()), t.Columns, samples)

	e.logger.Info("mapping suggested",
		zap.Int("columns", len(t.Columns)),
		zap.Int("fields", fm.Len()))

	return analysis, fm
}

// Process applies fm to t, validates the result and builds one payload
// per valid row. Payload rows keep their position in t.
func (e *Engine) Process(t *table.Table, fm *mapping.FieldMapping) *Result {
	if t == nil {
		t = table.New()
	}

	res := &Result{
		RunID:       uuid.NewString(),
		Diagnostics: &diagnostic.Diagnostics{},
		TotalRows:   t.Len(),
	}

	log := e.logger.With(zap.String("run_id", res.RunID))

	res.Diagnostics.Merge(*mapping.Validate(fm, e.reg))

	applied := e.applier.Run(t, fm)
	res.MappingErrors = applied.Errors
	res.Diagnostics.Merge(*applied.Diagnostics)

	valid, rowErrs := e.validator.Validate(applied.Table)
	res.ValidationErrors = rowErrs
	res.ValidRows = valid.Len()

	position := make(map[*table.Row]int, applied.Table.Len())
	for i, row := range applied.Table.Rows {
		position[row] = i + 1
	}

	res.Payloads = make([]payload.Payload, 0, valid.Len())
	for _, row := range valid.Rows {
		res.Payloads = append(res.Payloads, e.builder.BuildRow(row, position[row], res.Diagnostics))
	}

	fallbacks := 0
	for _, p := range res.Payloads {
		fallbacks += len(p.Fallbacks)
	}

	log.Info("run finished",
		zap.Int("rows", res.TotalRows),
		zap.Int("valid", res.ValidRows),
		zap.Int("mapping_errors", len(res.MappingErrors)),
		zap.Int("fallbacks", fallbacks))

	return res
}

func (e *Engine) sampleSize() int {
	if e.cfg.Analyzer.SampleSize > 0 {
		return e.cfg.Analyzer.SampleSize
	}

	return match.DefaultSampleSize
}
