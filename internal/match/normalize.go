package match

import (
	"strings"
	"unicode"
)

var columnReplacer = strings.NewReplacer(" ", "_", "-", "_")

// NormalizeColumn prepares a column name or alias for rule matching:
// lower case, with spaces and hyphens turned into underscores.
func NormalizeColumn(s string) string {
	return columnReplacer.Replace(strings.ToLower(s))
}

// NormalizeIdent folds an identifier for similarity scoring.
// The pipeline:
// 1. Split CamelCase into tokens.
// 2. Case-fold to lower.
// 3. Drop separators (_, -, spaces, dots).
//
// So "Load Number", "load_number" and "loadNumber" all become "loadnumber".
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, tok := range tokenizeCamelCase(s) {
		b.WriteString(strings.ToLower(tok))
	}

	return b.String()
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens,
// also breaking on separators.
// Examples:
//   - "loadNumber" -> ["load", "Number"]
//   - "Pickup ZIP" -> ["Pickup", "ZIP"]
//   - "POD_Collected" -> ["POD", "Collected"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var (
		tokens  []string
		current strings.Builder
	)

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// shouldStartNewToken reports a lower-to-upper transition ("loadNumber")
// or the end of an acronym ("ZIPCode").
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prev := runes[i-1]

	if !unicode.IsUpper(r) {
		return false
	}

	if !unicode.IsUpper(prev) && !isSeparator(prev) {
		return true
	}

	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
