package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"load-mapper/internal/mapping"
	"load-mapper/internal/match"
)

// Origin explains how a field in a suggestion report got its column.
type Origin string

const (
	OriginExact    Origin = "exact"
	OriginRule     Origin = "rule"
	OriginResolved Origin = "resolved"
	OriginManual   Origin = "manual"
	OriginDefault  Origin = "default"
)

// SuggestionReport summarizes a suggested mapping for review.
type SuggestionReport struct {
	Matches  []MatchReport    `json:"matches"`
	Unmapped []UnmappedReport `json:"unmapped,omitempty"`
}

// MatchReport describes one mapped field.
type MatchReport struct {
	Field        string            `json:"field"`
	Source       string            `json:"source"`
	Origin       Origin            `json:"origin"`
	Confidence   float64           `json:"confidence"`
	Reasons      []string          `json:"reasons,omitempty"`
	IsAmbiguous  bool              `json:"isAmbiguous,omitempty"`
	Alternatives []CandidateReport `json:"alternatives,omitempty"`
}

// UnmappedReport describes a column no field reads.
type UnmappedReport struct {
	Column string `json:"column"`
	Kind   string `json:"kind"`
	// Closest lists the best-scoring fields the column fell short for.
	Closest []CandidateReport `json:"closest,omitempty"`
}

// CandidateReport describes an alternative pairing.
type CandidateReport struct {
	Field      string  `json:"field"`
	Column     string  `json:"column"`
	Confidence float64 `json:"confidence"`
}

// maxAlternatives caps alternatives listed per report entry.
const maxAlternatives = 3

// GenerateReport builds a report for a final mapping. analysis may be nil,
// in which case confidence and alternatives are omitted.
func GenerateReport(fm *mapping.FieldMapping, analysis *match.Analysis) *SuggestionReport {
	report := &SuggestionReport{}

	for _, e := range fm.Entries() {
		report.Matches = append(report.Matches, matchReport(e, analysis))
	}

	if analysis == nil {
		return report
	}

	for _, col := range analysis.Columns() {
		if fm.UsesColumn(col) {
			continue
		}

		report.Unmapped = append(report.Unmapped, UnmappedReport{
			Column:  col,
			Kind:    analysis.Kind(col).String(),
			Closest: closestFields(analysis, col),
		})
	}

	return report
}

func matchReport(e mapping.Entry, analysis *match.Analysis) MatchReport {
	mr := MatchReport{
		Field:  e.Field,
		Source: e.Source.Describe(),
	}

	switch e.Source.Kind {
	case mapping.SourceManual:
		mr.Origin = OriginManual
		mr.Confidence = 1

		return mr
	case mapping.SourceDefault:
		mr.Origin = OriginDefault

		return mr
	}

	mr.Origin = OriginResolved

	if analysis == nil {
		return mr
	}

	candidates := analysis.Candidates(e.Field)

	for _, c := range candidates {
		if c.Column != e.Source.Value {
			continue
		}

		mr.Confidence = c.Confidence
		mr.Reasons = c.Reasons
		mr.Origin = OriginRule

		if c.Exact {
			mr.Origin = OriginExact
		}

		break
	}

	mr.IsAmbiguous = candidates.IsAmbiguous(match.DefaultAmbiguityThreshold)

	for _, c := range candidates {
		if c.Column == e.Source.Value {
			continue
		}

		if len(mr.Alternatives) == maxAlternatives {
			break
		}

		mr.Alternatives = append(mr.Alternatives, CandidateReport{
			Field:      c.Field,
			Column:     c.Column,
			Confidence: c.Confidence,
		})
	}

	return mr
}

func closestFields(analysis *match.Analysis, column string) []CandidateReport {
	var cl match.CandidateList

	for _, field := range analysis.Fields() {
		for _, c := range analysis.Candidates(field) {
			if c.Column == column {
				cl = append(cl, c)
			}
		}
	}

	cl.Rank()

	out := make([]CandidateReport, 0, len(cl.Top(maxAlternatives)))
	for _, c := range cl.Top(maxAlternatives) {
		out = append(out, CandidateReport{Field: c.Field, Column: c.Column, Confidence: c.Confidence})
	}

	return out
}

// FormatReport renders a report as human-readable text.
func FormatReport(report *SuggestionReport) string {
	var sb strings.Builder

	sb.WriteString("# Suggested Field Mapping\n\n")

	for _, m := range report.Matches {
		fmt.Fprintf(&sb, "%s <- %s [%s", m.Field, m.Source, m.Origin)

		if m.Confidence > 0 {
			fmt.Fprintf(&sb, ", %.2f", m.Confidence)
		}

		sb.WriteString("]")

		if m.IsAmbiguous {
			sb.WriteString(" (ambiguous)")
		}

		sb.WriteString("\n")

		for _, alt := range m.Alternatives {
			fmt.Fprintf(&sb, "    alt: %s (%.2f)\n", alt.Column, alt.Confidence)
		}
	}

	if len(report.Unmapped) > 0 {
		sb.WriteString("\n# Unmapped Columns\n\n")

		for _, u := range report.Unmapped {
			fmt.Fprintf(&sb, "%s (%s)\n", u.Column, u.Kind)
		}
	}

	return sb.String()
}

// JSON renders the report as indented JSON.
func (r *SuggestionReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
