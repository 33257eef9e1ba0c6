package schema

import (
	"fmt"
	"regexp"
	"strings"
)

type compiledRule struct {
	name     *regexp.Regexp
	guard    *regexp.Regexp
	values   []*regexp.Regexp
	excludes []*regexp.Regexp
	enum     map[string]struct{}
}

// compile prepares the rule's patterns. Matching is case-insensitive throughout.
func (r *Rule) compile() error {
	c := &compiledRule{enum: make(map[string]struct{}, len(r.EnumValues))}

	var err error

	if r.Regex != "" {
		if c.name, err = compileFold(r.Regex); err != nil {
			return fmt.Errorf("rule %s: regex: %w", r.Field, err)
		}
	}

	if r.RegexNotFollowedBy != "" {
		if c.guard, err = compileFold(r.RegexNotFollowedBy); err != nil {
			return fmt.Errorf("rule %s: regex_not_followed_by: %w", r.Field, err)
		}
	}

	for _, p := range r.ValuePatterns {
		re, err := compileFold(p)
		if err != nil {
			return fmt.Errorf("rule %s: value pattern %q: %w", r.Field, p, err)
		}

		c.values = append(c.values, re)
	}

	for _, p := range r.ExcludePatterns {
		re, err := compileFold(p)
		if err != nil {
			return fmt.Errorf("rule %s: exclude pattern %q: %w", r.Field, p, err)
		}

		c.excludes = append(c.excludes, re)
	}

	for _, v := range r.EnumValues {
		c.enum[strings.ToUpper(v)] = struct{}{}
	}

	r.compiled = c

	return nil
}

func compileFold(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// NameMatch reports whether the rule's regex matches a normalized column name.
// A match is rejected when the text after it matches RegexNotFollowedBy.
func (r *Rule) NameMatch(column string) bool {
	c := r.compiled
	if c == nil || c.name == nil {
		return false
	}

	if c.guard == nil {
		return c.name.MatchString(column)
	}

	for _, loc := range c.name.FindAllStringIndex(column, -1) {
		if !c.guard.MatchString(column[loc[1]:]) {
			return true
		}
	}

	return false
}

// HasValuePatterns returns true if the rule inspects sample values.
func (r *Rule) HasValuePatterns() bool {
	return r.compiled != nil && len(r.compiled.values) > 0
}

// ValueMatch reports whether any value pattern matches the sample.
func (r *Rule) ValueMatch(sample string) bool {
	if r.compiled == nil {
		return false
	}

	for _, re := range r.compiled.values {
		if re.MatchString(sample) {
			return true
		}
	}

	return false
}

// EnumMatch reports whether the upper-cased sample is one of the rule's enum values.
func (r *Rule) EnumMatch(sample string) bool {
	if r.compiled == nil {
		return false
	}

	_, ok := r.compiled.enum[strings.ToUpper(sample)]

	return ok
}

// UnitMatch reports whether the sample mentions one of the rule's unit tokens.
func (r *Rule) UnitMatch(sample string) bool {
	lower := strings.ToLower(sample)
	for _, unit := range r.UnitTokens {
		if strings.Contains(lower, strings.ToLower(unit)) {
			return true
		}
	}

	return false
}

// Excluders returns the compiled exclude patterns in declaration order.
func (r *Rule) Excluders() []*regexp.Regexp {
	if r.compiled == nil {
		return nil
	}

	return r.compiled.excludes
}
