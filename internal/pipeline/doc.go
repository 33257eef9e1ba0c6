// Package pipeline wires the mapping stages into one engine.
//
// Suggest analyzes a table's columns and resolves a field mapping.
// Process applies a mapping, validates the mapped rows and builds one
// payload per valid row, tagging the run with a fresh identifier.
package pipeline
