// Package format coerces raw cell values into the representation each
// target field expects.
//
// Dispatch is by substring on the field path, using the token lists in the
// registry's formatting section, in this order:
//
//   - date tokens: UTC timestamp "2006-01-02T15:04:05.000Z", or "" if unparseable
//   - integer tokens: int64 after stripping "$", "," and spaces, or 0
//   - float tokens: float64 parsed as a decimal, or 0
//   - anything else: enum alias, then allowed token (exact, then case-insensitive),
//     then legacy equipment spelling, then the trimmed string
//
// Formatting never fails.
package format
