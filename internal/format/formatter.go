package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"load-mapper/internal/schema"
	"load-mapper/internal/table"
)

// TimeLayout is the timestamp layout of every formatted date field.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// DefaultEquipment replaces equipment spellings that match no alias.
const DefaultEquipment = "DRY_VAN"

// Formatter coerces raw cell values into the representation a target
// field expects. It is safe for concurrent use.
type Formatter struct {
	reg *schema.Registry
}

// NewFormatter creates a formatter driven by the registry's tables.
func NewFormatter(reg *schema.Registry) *Formatter {
	return &Formatter{reg: reg}
}

// Format converts raw into the value emitted for path. It never fails:
// unparseable dates become "", unparseable numbers become 0.
func (f *Formatter) Format(path string, raw any) any {
	tokens := f.reg.Formatting()

	switch {
	case containsAny(path, tokens.Date):
		return FormatTime(raw)
	case containsAny(path, tokens.Integer):
		return Integer(raw)
	case containsAny(path, tokens.Float):
		return Float(raw)
	default:
		return f.text(path, raw)
	}
}

func (f *Formatter) text(path string, raw any) any {
	s := strings.TrimSpace(table.String(raw))

	if token, ok := f.reg.EnumAlias(path, s); ok {
		return token
	}

	if field, ok := f.reg.Field(path); ok && field.IsEnum() {
		for _, allowed := range field.Allowed {
			if s == allowed {
				return allowed
			}
		}

		for _, allowed := range field.Allowed {
			if strings.EqualFold(s, allowed) {
				return allowed
			}
		}
	}

	if strings.HasSuffix(path, ".equipment") || strings.HasSuffix(path, ".equipmentType") {
		if token, ok := f.reg.EquipmentAlias(s); ok {
			return token
		}

		if s != "" && !f.reg.IsEnumLiteral(s) {
			return DefaultEquipment
		}
	}

	return s
}

// FormatTime renders raw as a UTC timestamp, or "" when it cannot be parsed.
func FormatTime(raw any) string {
	t, ok := ParseTime(raw)
	if !ok {
		return ""
	}

	return t.UTC().Format(TimeLayout)
}

// Integer parses raw as a number and truncates it toward zero.
// Currency symbols, thousands separators and spaces are ignored.
func Integer(raw any) int64 {
	d, ok := parseDecimal(raw)
	if !ok {
		return 0
	}

	return d.IntPart()
}

// Float parses raw as a decimal number, or returns 0.
func Float(raw any) float64 {
	d, ok := parseDecimal(raw)
	if !ok {
		return 0
	}

	return d.InexactFloat64()
}

// IsNumeric reports whether raw parses as a number after stripping
// currency symbols, thousands separators and spaces.
func IsNumeric(raw any) bool {
	_, ok := parseDecimal(raw)
	return ok
}

// Decimal parses raw the way Integer and Float do.
func Decimal(raw any) (decimal.Decimal, bool) {
	return parseDecimal(raw)
}

func parseDecimal(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, false
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		if table.IsBlank(v) {
			return decimal.Zero, false
		}

		return decimal.NewFromFloat(v), true
	case bool:
		return decimal.Zero, false
	case time.Time:
		return decimal.Zero, false
	}

	s := CleanNumber(table.String(raw))
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

// CleanNumber strips "$", "," and whitespace from a numeric string.
func CleanNumber(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t':
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(s))
}

func containsAny(path string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(path, tok) {
			return true
		}
	}

	return false
}

// Layouts are tried in order before falling back to cast's parser.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04PM",
	"1/2/2006",
	"1-2-2006",
	"2006/01/02",
	"2006/01/02 15:04",
	"Jan 2, 2006",
	"Jan 2, 2006 3:04 PM",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseTime parses a date or timestamp in any of the accepted layouts.
// Values without a zone are taken as UTC.
func ParseTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case nil:
		return time.Time{}, false
	}

	s := strings.TrimSpace(table.String(raw))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}

	// Bare numbers are not timestamps.
	if IsNumeric(s) {
		return time.Time{}, false
	}

	t, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
