package table

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Row is an ordered association of column name to raw scalar value.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// RowOf builds a row from alternating key/value pairs.
// Keys that are not strings are skipped.
func RowOf(pairs ...any) *Row {
	r := NewRow()

	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}

		r.Set(key, pairs[i+1])
	}

	return r
}

// Set assigns a value, appending the key when it is new.
func (r *Row) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}

	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value stored under key, or nil.
func (r *Row) Value(key string) any {
	return r.values[key]
}

// Has returns true if the row carries the key, blank or not.
func (r *Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns the row's keys in insertion order.
func (r *Row) Keys() []string {
	return r.keys
}

// Len returns the number of keys.
func (r *Row) Len() int {
	return len(r.keys)
}

// Clone returns a shallow copy of the row.
func (r *Row) Clone() *Row {
	c := &Row{
		keys:   slices.Clone(r.keys),
		values: make(map[string]any, len(r.values)),
	}

	for k, v := range r.values {
		c.values[k] = v
	}

	return c
}

// MarshalJSON encodes the row as an object preserving key order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Table is an ordered set of columns plus the rows that carry them.
type Table struct {
	Columns []string
	Rows    []*Row
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: slices.Clone(columns)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn returns true if the table declares the column.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// AddColumn declares a column without touching rows.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Append adds a row, declaring any columns it introduces.
func (t *Table) Append(r *Row) {
	for _, k := range r.Keys() {
		t.AddColumn(k)
	}

	t.Rows = append(t.Rows, r)
}

// SetColumn fills a column on every row from fn.
func (t *Table) SetColumn(name string, fn func(i int, r *Row) any) {
	t.AddColumn(name)

	for i, r := range t.Rows {
		r.Set(name, fn(i, r))
	}
}

// Column returns every row's value for a column.
func (t *Table) Column(name string) []any {
	values := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		values[i] = r.Value(name)
	}

	return values
}

// Slice returns a table sharing rows [start, end).
func (t *Table) Slice(start, end int) *Table {
	start = max(0, min(start, len(t.Rows)))
	end = max(start, min(end, len(t.Rows)))

	return &Table{Columns: t.Columns, Rows: t.Rows[start:end]}
}
