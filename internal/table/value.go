package table

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// IsBlank returns true for nil, NaN, and whitespace-only strings.
func IsBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	default:
		return false
	}
}

// String renders a raw scalar as text. Blank values render as "".
func String(v any) string {
	if IsBlank(v) {
		return ""
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}

	return s
}

// Sample returns up to n non-blank values of a column rendered as text,
// in row order.
func Sample(t *Table, column string, n int) []string {
	var out []string

	for _, r := range t.Rows {
		if len(out) >= n {
			break
		}

		v, ok := r.Get(column)
		if !ok || IsBlank(v) {
			continue
		}

		out = append(out, String(v))
	}

	return out
}

// Samples returns Sample for every column of the table.
func Samples(t *Table, n int) map[string][]string {
	samples := make(map[string][]string, len(t.Columns))
	for _, c := range t.Columns {
		samples[c] = Sample(t, c, n)
	}

	return samples
}
