// Package table holds the in-memory tabular form shared by every stage:
// ordered columns, rows of raw scalars, and readers for CSV and JSON input.
package table
