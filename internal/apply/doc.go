// Package apply turns a source table into a field-keyed table by following
// a field mapping, then adds the fields every load needs but few files
// carry: stop sequence numbers and a default item block.
package apply
