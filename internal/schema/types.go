package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"load-mapper/internal/common"
)

// FieldType is the value type of a target field.
type FieldType int

const (
	// FieldString is free text, trimmed on output.
	FieldString FieldType = iota
	// FieldNumber is an integer or decimal quantity.
	FieldNumber
	// FieldDate is a timestamp emitted in UTC.
	FieldDate
	// FieldEnum is a token restricted to Field.Allowed.
	FieldEnum
)

// String returns the registry spelling of the field type.
func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldNumber:
		return "number"
	case FieldDate:
		return "date"
	case FieldEnum:
		return "enum"
	default:
		return common.UnknownStr
	}
}

// ParseFieldType converts a registry spelling into a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "", "string":
		return FieldString, nil
	case "number", "integer":
		return FieldNumber, nil
	case "date":
		return FieldDate, nil
	case "enum":
		return FieldEnum, nil
	default:
		return FieldString, fmt.Errorf("unknown field type %q", s)
	}
}

// UnmarshalYAML implements custom YAML unmarshaling for FieldType.
func (t *FieldType) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected field type scalar, got %v", node.Kind)
	}

	parsed, err := ParseFieldType(node.Value)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// MarshalYAML implements custom YAML marshaling for FieldType.
func (t FieldType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// Field describes one dotted path in the target load schema.
type Field struct {
	// Path is the dotted field path; numeric segments are array indices.
	Path string `yaml:"path"`
	// Type selects validation and formatting behavior.
	Type FieldType `yaml:"type"`
	// Required marks fields that every row must provide.
	Required bool `yaml:"required,omitempty"`
	// RequiredWhen makes the field required once any column with this prefix is present.
	RequiredWhen string `yaml:"required_when,omitempty"`
	// Description is used in user-facing validation messages.
	Description string `yaml:"description,omitempty"`
	// Allowed lists the permitted tokens for enum fields.
	Allowed []string `yaml:"allowed,omitempty"`
}

// IsEnum returns true if the field restricts values to a fixed token set.
func (f *Field) IsEnum() bool {
	return f.Type == FieldEnum && len(f.Allowed) > 0
}

// Conditional returns true if the field is only required alongside related data.
func (f *Field) Conditional() bool {
	return f.RequiredWhen != ""
}

// Rule is a column matching rule for one target field.
type Rule struct {
	Field              string   `yaml:"field"`
	Regex              string   `yaml:"regex,omitempty"`
	RegexNotFollowedBy string   `yaml:"regex_not_followed_by,omitempty"`
	Aliases            []string `yaml:"aliases,omitempty"`
	ValuePatterns      []string `yaml:"value_patterns,omitempty"`
	EnumValues         []string `yaml:"enum_values,omitempty"`
	UnitTokens         []string `yaml:"unit_tokens,omitempty"`
	ExcludeTokens      []string `yaml:"exclude_tokens,omitempty"`
	ExcludePatterns    []string `yaml:"exclude_patterns,omitempty"`
	NumericRequired    bool     `yaml:"numeric_required,omitempty"`
	Priority           int      `yaml:"priority,omitempty"`

	compiled *compiledRule
}

// FormatTokens selects a value coercion by substring match on the field path.
type FormatTokens struct {
	Date    []string `yaml:"date_tokens"`
	Integer []string `yaml:"integer_tokens"`
	Float   []string `yaml:"float_tokens"`
}

// ValidationChecks lists fields that receive parseability checks.
type ValidationChecks struct {
	DateFields    []string `yaml:"date_fields"`
	NumericFields []string `yaml:"numeric_fields"`
}

// WindowGroup pairs an arrival window start field with its end field.
type WindowGroup struct {
	Start    string   `yaml:"start"`
	End      string   `yaml:"end"`
	Keywords []string `yaml:"keywords"`
}

// AddressGroup ties the sub-fields under Prefix to column keywords.
type AddressGroup struct {
	Prefix   string   `yaml:"prefix"`
	Keywords []string `yaml:"keywords"`
}

// AddressToken lists column tokens that identify an address sub-field.
type AddressToken struct {
	Field  string   `yaml:"field"`
	Tokens []string `yaml:"tokens"`
}

// Resolution holds the related-field groups used to fill mapping gaps.
type Resolution struct {
	EndTokens     []string       `yaml:"end_tokens"`
	Windows       []WindowGroup  `yaml:"windows"`
	AddressTokens []AddressToken `yaml:"address_tokens"`
	Addresses     []AddressGroup `yaml:"addresses"`
}

// Document is the on-disk registry layout.
type Document struct {
	Version          string                       `yaml:"version"`
	Fields           []Field                      `yaml:"fields"`
	Rules            []Rule                       `yaml:"rules"`
	EnumAliases      map[string]map[string]string `yaml:"enum_aliases"`
	EquipmentAliases map[string]string            `yaml:"equipment_aliases"`
	Formatting       FormatTokens                 `yaml:"formatting"`
	Validation       ValidationChecks             `yaml:"validation"`
	Resolution       Resolution                   `yaml:"resolution"`
}
