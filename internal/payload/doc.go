// Package payload builds nested load payloads from field-keyed rows.
//
// Each field path is parsed into typed segments and written into a Node
// tree: keys select object members, numeric segments select array items,
// and a key followed by an index creates an array. Leaf values pass
// through the value formatter; blank values are never written.
//
// The raw tree is then made schema-compliant by a fixed sequence of
// fixups:
//
//  1. fold stray equipment keys into load.equipment
//  2. stop defaults: activity, address, country, later-stop address backfill
//  3. arrival window start and end
//  4. stop sequence renumbering
//  5. bid criteria equipment, weight and maximum bid
//  6. load.equipment.equipmentType, repairing double nesting
//  7. pruning of empty objects and arrays (load, customer and brokerage stay)
//  8. contacts arrays with default roles
//
// Contacts are fixed after pruning, so an empty contacts array is kept.
// Every fabricated value is reported as a Fallback.
package payload
