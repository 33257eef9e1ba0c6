package match

import (
	"regexp"

	"load-mapper/internal/format"
)

// Kind is the value shape inferred from a column's samples.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumeric
	KindDate
	KindEmail
	KindPhone
	KindString
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	case KindEmail:
		return "email"
	case KindPhone:
		return "phone"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// kindRatio is the share of samples that must agree on a kind.
const kindRatio = 0.8

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?1?[\s.-]?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}$`)
)

// InferKind classifies sample values. Numeric wins over date so that bare
// numbers are never reported as timestamps.
func InferKind(samples []string) Kind {
	if len(samples) == 0 {
		return KindEmpty
	}

	checks := []struct {
		kind Kind
		fn   func(string) bool
	}{
		{KindNumeric, func(s string) bool { return format.IsNumeric(s) }},
		{KindEmail, emailPattern.MatchString},
		{KindPhone, phonePattern.MatchString},
		{KindDate, func(s string) bool { _, ok := format.ParseTime(s); return ok }},
	}

	for _, c := range checks {
		hits := 0

		for _, s := range samples {
			if c.fn(s) {
				hits++
			}
		}

		if float64(hits)/float64(len(samples)) >= kindRatio {
			return c.kind
		}
	}

	return KindString
}
