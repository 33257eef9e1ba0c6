package match

import (
	"sort"
)

// Confidence thresholds for committing suggestions.
const (
	// DefaultMinScore is the minimum confidence for a suggestion to be committed.
	DefaultMinScore = 0.7
	// DefaultMinCandidate is the confidence a column must exceed to be kept as a candidate.
	DefaultMinCandidate = 0.3
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.1
)

// Candidate is a scored pairing of a source column with a target field.
type Candidate struct {
	Column string
	Field  string

	// Confidence is a soft [0,1] score; heavily matching columns may exceed 1.
	Confidence float64
	// Exact is set when the column name equals the field path.
	Exact bool

	// Reasons explains the score, one entry per contributing signal.
	Reasons []string
}

// CandidateList is a list of candidates for one field with ranking functionality.
type CandidateList []Candidate

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface. Higher confidence comes first.
func (c CandidateList) Less(i, j int) bool {
	return c[i].Confidence > c[j].Confidence
}

// Rank sorts by confidence descending. Ties keep column encounter order.
func (c CandidateList) Rank() {
	sort.Stable(c)
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Confidence-c[1].Confidence < threshold
}

// AboveThreshold returns candidates with confidence at or above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Confidence >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Columns returns the candidate column names in rank order.
func (c CandidateList) Columns() []string {
	cols := make([]string, len(c))
	for i := range c {
		cols[i] = c[i].Column
	}

	return cols
}
