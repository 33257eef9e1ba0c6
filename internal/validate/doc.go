// Package validate checks field-keyed tables against the schema registry.
//
// Each row is checked for:
//   - required fields, including conditional groups such as items
//   - parseable dates on arrival window starts
//   - parseable amounts on numeric checks
//   - enum membership after formatting
//
// Rows are processed in batches of Config.ChunkSize. Batches may run on up
// to Config.Workers goroutines; results are reassembled in batch order, so
// the output does not depend on either setting.
package validate
