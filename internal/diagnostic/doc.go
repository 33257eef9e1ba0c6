// Package diagnostic provides structured errors, warnings, and informational
// notes collected while mapping, validating, and building load payloads.
//
// Key capabilities:
//   - Missing-column reports with "did you mean" suggestions
//   - Unknown target field reports for hand-edited mapping files
//   - Structural conflicts hit while building nested payloads
//   - Fallback values fabricated by payload fixups
package diagnostic
