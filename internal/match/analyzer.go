package match

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"load-mapper/internal/format"
	"load-mapper/internal/schema"
)

// Suggestion is a committed field-to-column pairing.
type Suggestion struct {
	Field      string
	Column     string
	Confidence float64
	Exact      bool
}

// Analysis is the outcome of scoring a set of columns against the registry.
type Analysis struct {
	columns    []string
	fields     []string
	candidates map[string]CandidateList
	kinds      map[string]Kind
	accept     float64
}

// Columns returns the analyzed columns in input order.
func (a *Analysis) Columns() []string {
	return a.columns
}

// Fields returns every field that received at least one candidate, in
// registry order.
func (a *Analysis) Fields() []string {
	return a.fields
}

// Candidates returns the ranked candidates for a field.
func (a *Analysis) Candidates(field string) CandidateList {
	return a.candidates[field]
}

// Kind returns the value kind inferred for a column.
func (a *Analysis) Kind(column string) Kind {
	return a.kinds[column]
}

// Suggestions returns the best candidate of every field whose confidence
// reaches the accept threshold, in registry order.
func (a *Analysis) Suggestions() []Suggestion {
	var out []Suggestion

	for _, field := range a.fields {
		best := a.candidates[field].Best()
		if best == nil || best.Confidence < a.accept {
			continue
		}

		out = append(out, Suggestion{
			Field:      field,
			Column:     best.Column,
			Confidence: best.Confidence,
			Exact:      best.Exact,
		})
	}

	return out
}

// Analyzer scores source columns against the registry's matching rules.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	reg    *schema.Registry
	cfg    Config
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer. A nil logger disables logging.
func NewAnalyzer(reg *schema.Registry, cfg Config, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultSampleSize
	}

	return &Analyzer{reg: reg, cfg: cfg, logger: logger}
}

// Analyze scores every column against every rule. samples maps a column to
// its first non-blank values; only the first SampleSize are inspected.
func (a *Analyzer) Analyze(columns []string, samples map[string][]string) *Analysis {
	result := &Analysis{
		columns:    columns,
		candidates: make(map[string]CandidateList),
		kinds:      make(map[string]Kind, len(columns)),
		accept:     a.cfg.AcceptThreshold,
	}

	decided := make(map[string]struct{})

	// A column named exactly like a field path settles that field.
	for _, col := range columns {
		if !a.reg.Has(col) {
			continue
		}

		decided[col] = struct{}{}
		result.candidates[col] = CandidateList{{
			Column:     col,
			Field:      col,
			Confidence: 1.0,
			Exact:      true,
			Reasons:    []string{"exact field path"},
		}}
	}

	rules := a.reg.Rules()

	for _, col := range columns {
		colSamples := samples[col]
		if len(colSamples) > a.cfg.SampleSize {
			colSamples = colSamples[:a.cfg.SampleSize]
		}

		result.kinds[col] = InferKind(colSamples)
		normalized := NormalizeColumn(col)

		for i := range rules {
			rule := &rules[i]

			if _, ok := decided[rule.Field]; ok {
				continue
			}

			score, reasons, ok := a.score(rule, normalized, colSamples)
			if !ok {
				a.logger.Debug("candidate rejected",
					zap.String("column", col),
					zap.String("field", rule.Field),
					zap.Strings("reasons", reasons))

				continue
			}

			if score <= a.cfg.MinCandidate {
				continue
			}

			result.candidates[rule.Field] = append(result.candidates[rule.Field], Candidate{
				Column:     col,
				Field:      rule.Field,
				Confidence: score,
				Reasons:    reasons,
			})
		}
	}

	for field, list := range result.candidates {
		list.Rank()
		result.fields = append(result.fields, field)
	}

	a.sortFields(result.fields)

	for _, s := range result.Suggestions() {
		a.logger.Debug("field suggested",
			zap.String("field", s.Field),
			zap.String("column", s.Column),
			zap.Float64("confidence", s.Confidence),
			zap.Bool("exact", s.Exact))
	}

	return result
}

// score evaluates one rule against one column. ok is false when the rule
// rejects the column outright.
func (a *Analyzer) score(rule *schema.Rule, column string, samples []string) (float64, []string, bool) {
	w := a.cfg.Weights

	var (
		score   float64
		reasons []string
	)

	add := func(delta float64, msg string, args ...any) {
		score += delta
		reasons = append(reasons, fmt.Sprintf("%+.2f ", delta)+fmt.Sprintf(msg, args...))
	}

	if rule.NameMatch(column) {
		add(w.Regex, "name pattern")
	}

	for _, alias := range rule.Aliases {
		norm := NormalizeColumn(alias)

		switch {
		case norm == column:
			add(w.AliasExact, "alias %q", alias)
		case strings.Contains(column, norm) || strings.Contains(norm, column):
			add(w.AliasPartial, "partial alias %q", alias)
		}
	}

	if len(samples) > 0 {
		n := float64(len(samples))

		if rule.HasValuePatterns() {
			if hits := countMatches(samples, rule.ValueMatch); hits > 0 {
				add(float64(hits)/n*w.ValuePattern, "%d/%d values match pattern", hits, len(samples))
			}
		}

		if len(rule.EnumValues) > 0 {
			if hits := countMatches(samples, rule.EnumMatch); hits > 0 {
				add(float64(hits)/n*w.EnumValue, "%d/%d values are enum tokens", hits, len(samples))
			}
		}
	}

	if len(rule.UnitTokens) > 0 && countMatches(samples, rule.UnitMatch) > 0 {
		add(w.Unit, "unit token in values")
	}

	for _, tok := range rule.ExcludeTokens {
		if strings.Contains(column, tok) {
			add(-w.ExcludeToken, "excluded token %q", tok)
		}
	}

	for _, re := range rule.Excluders() {
		if re.MatchString(column) {
			add(-w.ExcludePattern, "excluded pattern %q in name", re.String())
		}

		if countMatches(samples, func(s string) bool { return re.MatchString(strings.ToLower(s)) }) > 0 {
			add(-w.ExcludeSample, "excluded pattern %q in values", re.String())
		}
	}

	if rule.NumericRequired && len(samples) > 0 {
		hits := countMatches(samples, func(s string) bool { return format.IsNumeric(s) })
		if hits == 0 {
			return 0, append(reasons, "no numeric values"), false
		}

		switch ratio := float64(hits) / float64(len(samples)); {
		case ratio >= numericStrongRatio:
			add(w.NumericStrong, "numeric values")
		case ratio >= numericWeakRatio:
			add(w.NumericWeak, "mostly numeric values")
		default:
			add(-w.NumericPenalty, "few numeric values")
		}
	}

	if rule.Priority == 1 {
		add(w.Priority, "priority")
	}

	return score, reasons, true
}

func (a *Analyzer) sortFields(fields []string) {
	position := make(map[string]int)
	for i, p := range a.reg.Paths() {
		position[p] = i
	}

	rank := func(field string) int {
		if f, ok := a.reg.Field(field); ok {
			return position[f.Path]
		}

		return len(position)
	}

	sort.SliceStable(fields, func(i, j int) bool {
		ri, rj := rank(fields[i]), rank(fields[j])
		if ri != rj {
			return ri < rj
		}

		return fields[i] < fields[j]
	})
}

func countMatches(samples []string, fn func(string) bool) int {
	n := 0

	for _, s := range samples {
		if fn(s) {
			n++
		}
	}

	return n
}
