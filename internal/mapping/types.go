package mapping

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:generate go tool stringer -type=SourceKind -trimprefix=Source -output=sourcekind_string.go

// SourceKind identifies where a mapped field takes its value from.
type SourceKind int

const (
	// SourceColumn copies the value of a source table column.
	SourceColumn SourceKind = iota
	// SourceManual broadcasts a literal entered by the user.
	SourceManual
	// SourceDefault broadcasts a literal fallback value.
	SourceDefault
)

// Legacy string encodings of literal sources.
const (
	ManualPrefix  = "MANUAL_VALUE:"
	DefaultPrefix = "DEFAULT_VALUE:"
)

// Source is the origin of one target field's values.
type Source struct {
	Kind  SourceKind
	Value string
}

// Column returns a source that reads the named column.
func Column(name string) Source {
	return Source{Kind: SourceColumn, Value: name}
}

// Manual returns a source that broadcasts a user-entered literal.
func Manual(value string) Source {
	return Source{Kind: SourceManual, Value: value}
}

// Default returns a source that broadcasts a fallback literal.
func Default(value string) Source {
	return Source{Kind: SourceDefault, Value: value}
}

// ParseSource decodes the scalar form of a source. Values carrying a legacy
// MANUAL_VALUE: or DEFAULT_VALUE: prefix become literals, anything else
// names a column.
func ParseSource(s string) Source {
	switch {
	case strings.HasPrefix(s, ManualPrefix):
		return Manual(strings.TrimPrefix(s, ManualPrefix))
	case strings.HasPrefix(s, DefaultPrefix):
		return Default(strings.TrimPrefix(s, DefaultPrefix))
	default:
		return Column(s)
	}
}

// IsLiteral returns true for manual and default sources.
func (s Source) IsLiteral() bool {
	return s.Kind == SourceManual || s.Kind == SourceDefault
}

// Encode returns the scalar form understood by ParseSource.
func (s Source) Encode() string {
	switch s.Kind {
	case SourceManual:
		return ManualPrefix + s.Value
	case SourceDefault:
		return DefaultPrefix + s.Value
	default:
		return s.Value
	}
}

// Describe returns a short human-readable form of the source.
func (s Source) Describe() string {
	switch s.Kind {
	case SourceManual:
		return fmt.Sprintf("manual %q", s.Value)
	case SourceDefault:
		return fmt.Sprintf("default %q", s.Value)
	default:
		return s.Value
	}
}

// Entry pairs a target field path with its source.
type Entry struct {
	Field  string
	Source Source
}

// FieldMapping is an ordered assignment of at most one source per target
// field path. The zero value is an empty mapping ready to use.
type FieldMapping struct {
	entries []Entry
	index   map[string]int
}

// New creates a mapping from entries. Later entries replace earlier ones
// for the same field.
func New(entries ...Entry) *FieldMapping {
	fm := &FieldMapping{}
	for _, e := range entries {
		fm.Set(e.Field, e.Source)
	}

	return fm
}

// Set assigns the source of a field, keeping the field's position if it
// is already mapped.
func (fm *FieldMapping) Set(field string, src Source) {
	if fm.index == nil {
		fm.index = make(map[string]int)
	}

	if i, ok := fm.index[field]; ok {
		fm.entries[i].Source = src
		return
	}

	fm.index[field] = len(fm.entries)
	fm.entries = append(fm.entries, Entry{Field: field, Source: src})
}

// Get returns the source of a field.
func (fm *FieldMapping) Get(field string) (Source, bool) {
	if fm == nil {
		return Source{}, false
	}

	i, ok := fm.index[field]
	if !ok {
		return Source{}, false
	}

	return fm.entries[i].Source, true
}

// Has returns true if the field is mapped.
func (fm *FieldMapping) Has(field string) bool {
	_, ok := fm.Get(field)
	return ok
}

// Delete removes a field.
func (fm *FieldMapping) Delete(field string) {
	i, ok := fm.index[field]
	if !ok {
		return
	}

	fm.entries = slices.Delete(fm.entries, i, i+1)
	delete(fm.index, field)

	for j := i; j < len(fm.entries); j++ {
		fm.index[fm.entries[j].Field] = j
	}
}

// Len returns the number of mapped fields.
func (fm *FieldMapping) Len() int {
	if fm == nil {
		return 0
	}

	return len(fm.entries)
}

// Entries returns the mapped fields in order.
func (fm *FieldMapping) Entries() []Entry {
	if fm == nil {
		return nil
	}

	return fm.entries
}

// Fields returns the mapped field paths in order.
func (fm *FieldMapping) Fields() []string {
	fields := make([]string, 0, fm.Len())
	for _, e := range fm.Entries() {
		fields = append(fields, e.Field)
	}

	return fields
}

// Clone returns an independent copy.
func (fm *FieldMapping) Clone() *FieldMapping {
	return New(fm.Entries()...)
}

// UsesColumn returns true if any field reads the named column.
func (fm *FieldMapping) UsesColumn(column string) bool {
	for _, e := range fm.Entries() {
		if e.Source.Kind == SourceColumn && e.Source.Value == column {
			return true
		}
	}

	return false
}

// literalNode is the mapping form of a source.
type literalNode struct {
	Column  *string `yaml:"column,omitempty"`
	Manual  *string `yaml:"manual,omitempty"`
	Default *string `yaml:"default,omitempty"`
}

// UnmarshalYAML implements custom YAML unmarshaling for FieldMapping.
// Each value is either a column name scalar (legacy prefixes honored) or a
// mapping with exactly one of column, manual or default.
func (fm *FieldMapping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected field mapping, got %v", node.Kind)
	}

	*fm = FieldMapping{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		if fm.Has(key.Value) {
			return fmt.Errorf("line %d: field %q mapped more than once", key.Line, key.Value)
		}

		src, err := decodeSource(value)
		if err != nil {
			return fmt.Errorf("line %d: field %q: %w", value.Line, key.Value, err)
		}

		fm.Set(key.Value, src)
	}

	return nil
}

func decodeSource(node *yaml.Node) (Source, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return ParseSource(node.Value), nil

	case yaml.MappingNode:
		var lit literalNode
		if err := node.Decode(&lit); err != nil {
			return Source{}, err
		}

		var sources []Source

		if lit.Column != nil {
			sources = append(sources, Column(*lit.Column))
		}

		if lit.Manual != nil {
			sources = append(sources, Manual(*lit.Manual))
		}

		if lit.Default != nil {
			sources = append(sources, Default(*lit.Default))
		}

		if len(sources) != 1 {
			return Source{}, errors.New("expected exactly one of column, manual, default")
		}

		return sources[0], nil

	default:
		return Source{}, fmt.Errorf("expected column name or source mapping, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for FieldMapping, keeping
// field order. Columns are written as scalars, literals as mappings.
func (fm *FieldMapping) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, e := range fm.Entries() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: e.Field}

		var value *yaml.Node

		switch e.Source.Kind {
		case SourceManual:
			value = literalMapping("manual", e.Source.Value)
		case SourceDefault:
			value = literalMapping("default", e.Source.Value)
		default:
			value = &yaml.Node{Kind: yaml.ScalarNode, Value: e.Source.Value}
		}

		node.Content = append(node.Content, key, value)
	}

	return node, nil
}

func literalMapping(kind, value string) *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: kind},
			{Kind: yaml.ScalarNode, Value: value, Style: yaml.DoubleQuotedStyle},
		},
	}
}

// MappingFile is the on-disk form of a field mapping.
type MappingFile struct {
	Version string        `yaml:"version"`
	Fields  *FieldMapping `yaml:"fields"`
}
