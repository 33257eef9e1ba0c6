// Package plan turns column analysis into a field mapping.
//
// Resolution pipeline:
//  1. Analyze columns → ranked candidates per field (package match)
//  2. Commit confident suggestions → FieldMapping (FromSuggestions)
//  3. Fill related-field gaps from leftover columns (Resolver.Resolve):
//     - arrival window end fields next to a mapped window start
//     - address siblings next to any mapped address field
//  4. Report committed, group-resolved and unmapped fields (GenerateReport)
//
// Resolution never overwrites a mapped field, consumes each column at most
// once and is idempotent.
package plan
