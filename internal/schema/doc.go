// Package schema provides the read-only registry that drives every other
// stage: target field definitions, column matching rules, enum alias tables,
// formatter dispatch tokens, and related-field resolution groups.
//
// The default registry is compiled from an embedded YAML document; callers
// may supply their own with LoadFile or Parse. Compilation fails with
// ErrInvalidRegistry when the document is inconsistent.
//
// # Document layout
//
//	version: "1"
//	fields:
//	  - {path: load.mode, type: enum, required: true, allowed: [FTL, LTL, DRAYAGE]}
//	rules:
//	  - field: load.mode
//	    regex: '(mode|transport[\s_]*type)'
//	    aliases: [mode, transport mode]
//	    enum_values: [FTL, LTL, DRAYAGE]
//	    priority: 1
//	enum_aliases:
//	  load.mode: {full truckload: FTL}
//	equipment_aliases: {dry van: DRY_VAN}
//	formatting: {date_tokens: [...], integer_tokens: [...], float_tokens: [...]}
//	validation: {date_fields: [...], numeric_fields: [...]}
//	resolution: {end_tokens: [...], windows: [...], address_tokens: [...], addresses: [...]}
//
// # Path templates
//
// Field paths use numeric segments for array indices. Lookups for indices
// that are not registered explicitly fall back to the index-0 template.
package schema
