package plan

import (
	"strings"

	"go.uber.org/zap"

	"load-mapper/internal/format"
	"load-mapper/internal/mapping"
	"load-mapper/internal/match"
	"load-mapper/internal/schema"
)

// FromSuggestions converts committed analyzer suggestions into a mapping,
// keeping their order.
func FromSuggestions(suggestions []match.Suggestion) *mapping.FieldMapping {
	fm := &mapping.FieldMapping{}
	for _, s := range suggestions {
		fm.Set(s.Field, mapping.Column(s.Column))
	}

	return fm
}

// Resolver fills gaps in a mapping from the registry's related-field groups.
type Resolver struct {
	reg    *schema.Registry
	logger *zap.Logger
}

// NewResolver creates a new Resolver. A nil logger disables logging.
func NewResolver(reg *schema.Registry, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{reg: reg, logger: logger}
}

// Resolve returns a copy of suggestions with related fields filled from
// columns no field reads yet. Matching is case-insensitive and by substring.
//
// When samples are given, a column with no non-blank sample is never used,
// and a window end column must hold at least one parseable timestamp.
// A nil samples map disables both checks.
func (r *Resolver) Resolve(
	suggestions *mapping.FieldMapping,
	columns []string,
	samples map[string][]string,
) *mapping.FieldMapping {
	resolved := suggestions.Clone()

	st := &resolveState{
		mapped:   suggestions,
		resolved: resolved,
		samples:  samples,
		used:     make(map[string]struct{}),
	}

	for _, col := range columns {
		if !suggestions.UsesColumn(col) {
			st.free = append(st.free, col)
		}
	}

	res := r.reg.Resolution()

	for _, w := range res.Windows {
		if !suggestions.Has(w.Start) || resolved.Has(w.End) {
			continue
		}

		col, ok := st.take(func(lower string) bool {
			return containsAny(lower, w.Keywords) && containsAny(lower, res.EndTokens)
		}, true)
		if ok {
			r.assign(resolved, w.End, col, "window")
		}
	}

	for _, g := range res.Addresses {
		if !st.groupMapped(g, res.AddressTokens) {
			continue
		}

		for _, tok := range res.AddressTokens {
			field := g.Prefix + "." + tok.Field
			if resolved.Has(field) {
				continue
			}

			col, ok := st.take(func(lower string) bool {
				return containsAny(lower, g.Keywords) && containsAny(lower, tok.Tokens)
			}, false)
			if ok {
				r.assign(resolved, field, col, "address")
			}
		}
	}

	return resolved
}

func (r *Resolver) assign(fm *mapping.FieldMapping, field, column, group string) {
	fm.Set(field, mapping.Column(column))

	r.logger.Debug("field resolved by group",
		zap.String("field", field),
		zap.String("column", column),
		zap.String("group", group))
}

type resolveState struct {
	mapped   *mapping.FieldMapping
	resolved *mapping.FieldMapping
	samples  map[string][]string
	free     []string
	used     map[string]struct{}
}

// take returns the first unused free column accepted by fn and marks it used.
func (st *resolveState) take(fn func(lower string) bool, wantTime bool) (string, bool) {
	for _, col := range st.free {
		if _, used := st.used[col]; used {
			continue
		}

		if !fn(strings.ToLower(col)) || !st.usable(col, wantTime) {
			continue
		}

		st.used[col] = struct{}{}

		return col, true
	}

	return "", false
}

func (st *resolveState) usable(col string, wantTime bool) bool {
	if st.samples == nil {
		return true
	}

	values := st.samples[col]
	if len(values) == 0 {
		return false
	}

	if !wantTime {
		return true
	}

	for _, v := range values {
		if _, ok := format.ParseTime(v); ok {
			return true
		}
	}

	return false
}

// groupMapped reports whether the incoming mapping covers any field of the group.
func (st *resolveState) groupMapped(g schema.AddressGroup, tokens []schema.AddressToken) bool {
	for _, tok := range tokens {
		if st.mapped.Has(g.Prefix + "." + tok.Field) {
			return true
		}
	}

	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
