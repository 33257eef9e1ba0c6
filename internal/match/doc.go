// Package match scores source columns against target fields.
//
// Each column is compared with every matching rule in the registry. A rule
// contributes for name patterns, aliases, sample value patterns, enum tokens
// and unit tokens, and subtracts for excluded tokens and patterns. Fields
// whose best candidate reaches the accept threshold become suggestions.
//
// Key functions:
//   - NormalizeColumn: prepares column names for rule matching
//   - Levenshtein, Closest: edit distance and "did you mean" hints
//   - InferKind: classifies a column from its samples
//   - Analyzer.Analyze: ranks candidates per field
package match
