package apply

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"load-mapper/internal/common"
	"load-mapper/internal/diagnostic"
	"load-mapper/internal/mapping"
	"load-mapper/internal/match"
	"load-mapper/internal/table"
)

const (
	routePrefix    = "load.route."
	itemsPrefix    = "load.items."
	itemQuantity   = "load.items.0.quantity"
	itemWeight     = "load.items.0.totalWeightLbs"
	sequenceSuffix = ".sequence"
	maxSuggestions = 3
)

// Result is the outcome of applying a mapping.
type Result struct {
	Table       *table.Table
	Errors      []string
	Diagnostics *diagnostic.Diagnostics
}

// Applier applies field mappings to source tables. It holds no per-run
// state and is safe for concurrent use.
type Applier struct {
	logger *zap.Logger
}

// NewApplier creates a new Applier. A nil logger disables logging.
func NewApplier(logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Applier{logger: logger}
}

// Apply builds the field-keyed table and returns it with one message per
// mapped column missing from source.
func (a *Applier) Apply(source *table.Table, fm *mapping.FieldMapping) (*table.Table, []string) {
	res := a.Run(source, fm)
	return res.Table, res.Errors
}

// Run is Apply with diagnostics. Literal sources are broadcast to every
// row, column sources are copied, and a missing column leaves its field out.
func (a *Applier) Run(source *table.Table, fm *mapping.FieldMapping) *Result {
	res := &Result{
		Table:       table.New(),
		Diagnostics: &diagnostic.Diagnostics{},
	}

	if source == nil {
		source = table.New()
	}

	out := res.Table
	for range source.Rows {
		out.Rows = append(out.Rows, table.NewRow())
	}

	for _, e := range fm.Entries() {
		src := e.Source

		if src.IsLiteral() {
			out.SetColumn(e.Field, func(int, *table.Row) any { return src.Value })

			a.logger.Debug("literal broadcast",
				zap.String("field", e.Field),
				zap.Stringer("source", src.Kind))

			continue
		}

		if !source.HasColumn(src.Value) {
			msg := fmt.Sprintf("Column '%s' not found in uploaded file", src.Value)
			res.Errors = append(res.Errors, msg)
			res.Diagnostics.AddError(diagnostic.CodeColumnNotFound, msg, 0, e.Field,
				match.Closest(src.Value, source.Columns, maxSuggestions)...)

			a.logger.Warn("mapped column not found",
				zap.String("field", e.Field),
				zap.String("column", src.Value))

			continue
		}

		out.SetColumn(e.Field, func(i int, _ *table.Row) any {
			return source.Rows[i].Value(src.Value)
		})
	}

	a.addSequences(out, res.Diagnostics)
	a.addDefaultItems(out, res.Diagnostics)

	return res
}

// addSequences numbers every stop that carries fields other than its
// sequence, 1-based by stop index.
func (a *Applier) addSequences(t *table.Table, diags *diagnostic.Diagnostics) {
	stops := make(map[int]struct{})

	for _, col := range t.Columns {
		if !strings.HasPrefix(col, routePrefix) || strings.Contains(col, sequenceSuffix) {
			continue
		}

		idx, ok := stopIndex(col)
		if ok {
			stops[idx] = struct{}{}
		}
	}

	indices := make([]int, 0, len(stops))
	for idx := range stops {
		indices = append(indices, idx)
	}

	sort.Ints(indices)

	for _, idx := range indices {
		field := routePrefix + strconv.Itoa(idx) + sequenceSuffix
		seq := int64(idx + 1)

		t.SetColumn(field, func(int, *table.Row) any { return seq })
		diags.AddInfo(diagnostic.CodeFallbackApplied,
			fmt.Sprintf("stop sequence set to %d", seq), 0, field)
	}

	if len(indices) > 0 {
		a.logger.Debug("stop sequences generated", zap.Ints("stops", indices))
	}
}

func stopIndex(field string) (int, bool) {
	parts := strings.Split(field, ".")
	if len(parts) < 3 {
		return 0, false
	}

	idx, err := strconv.Atoi(parts[2])
	if err != nil || idx < 0 {
		return 0, false
	}

	return idx, true
}

// addDefaultItems creates a one-item block when weight or quantity data is
// mapped outside load.items.
func (a *Applier) addDefaultItems(t *table.Table, diags *diagnostic.Diagnostics) {
	var weights, quantities []string

	for _, col := range t.Columns {
		if strings.HasPrefix(col, itemsPrefix) {
			return
		}

		lower := strings.ToLower(col)

		if strings.Contains(lower, "weight") || strings.Contains(col, "totalWeightLbs") {
			weights = append(weights, col)
		}

		if strings.Contains(lower, "quantity") || strings.Contains(lower, "qty") {
			quantities = append(quantities, col)
		}
	}

	if common.IsEmpty(weights) && common.IsEmpty(quantities) {
		return
	}

	t.SetColumn(itemQuantity, func(int, *table.Row) any { return int64(1) })
	diags.AddInfo(diagnostic.CodeFallbackApplied, "item quantity defaulted to 1", 0, itemQuantity)

	from, ok := common.First(weights)
	if !ok {
		return
	}

	t.SetColumn(itemWeight, func(_ int, r *table.Row) any { return r.Value(from) })
	diags.AddInfo(diagnostic.CodeFallbackApplied,
		fmt.Sprintf("item weight copied from %s", from), 0, itemWeight)

	a.logger.Debug("default item block added", zap.String("weight_from", from))
}
