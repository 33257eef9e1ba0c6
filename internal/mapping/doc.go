// Package mapping defines field mappings: which source column, or which
// literal, feeds each target field path.
//
// Mappings are produced by column analysis and persisted as YAML so that a
// reviewed mapping can be replayed deterministically.
//
// # File format
//
//	version: "1"
//	fields:
//	  load.loadNumber: Load #                 # column
//	  load.mode: {manual: FTL}                # literal for every row
//	  load.route.0.address.country: {default: US}
//	  load.rateType: MANUAL_VALUE:SPOT        # legacy literal encoding
//
// Field order is preserved on load and write.
//
// # Paths
//
// Field paths are dotted; all-digit segments are array indices
// ("load.route.1.address.city"). ParsePath turns a path into typed
// PathSegment values.
package mapping
