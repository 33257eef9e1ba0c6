package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultDocument []byte

// ErrInvalidRegistry is returned when registry content is inconsistent.
var ErrInvalidRegistry = errors.New("invalid schema registry")

// DefaultDescription is used for fields that carry no description.
const DefaultDescription = "required for shipment processing"

// Registry is the read-only catalog of target fields, matching rules, and
// value canonicalization tables. It is safe for concurrent use.
type Registry struct {
	version          string
	fields           []Field
	byPath           map[string]int
	rules            []Rule
	enumAliases      map[string]map[string]string
	equipmentAliases map[string]string
	enumLiterals     map[string]struct{}
	formatting       FormatTokens
	validation       ValidationChecks
	resolution       Resolution
}

// Default returns the registry compiled from the embedded document.
func Default() (*Registry, error) {
	return Parse(defaultDocument)
}

// DefaultDocument returns a copy of the embedded registry YAML.
func DefaultDocument() []byte {
	return slices.Clone(defaultDocument)
}

// LoadFile loads and compiles a registry YAML file from the given path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes and compiles registry YAML.
func Parse(data []byte) (*Registry, error) {
	var doc Document

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry YAML: %w", err)
	}

	return New(&doc)
}

// New compiles a registry from a decoded document.
func New(doc *Document) (*Registry, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", ErrInvalidRegistry)
	}

	r := &Registry{
		version:          doc.Version,
		byPath:           make(map[string]int, len(doc.Fields)),
		enumAliases:      make(map[string]map[string]string, len(doc.EnumAliases)),
		equipmentAliases: make(map[string]string, len(doc.EquipmentAliases)),
		enumLiterals:     make(map[string]struct{}),
		formatting:       doc.Formatting,
		validation:       doc.Validation,
		resolution:       doc.Resolution,
	}

	if r.version == "" {
		r.version = "1"
	}

	if err := r.addFields(doc.Fields); err != nil {
		return nil, err
	}

	if err := r.addRules(doc.Rules); err != nil {
		return nil, err
	}

	if err := r.addAliases(doc.EnumAliases, doc.EquipmentAliases); err != nil {
		return nil, err
	}

	if err := r.checkReferences(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) addFields(fields []Field) error {
	for _, f := range fields {
		if f.Path == "" {
			return fmt.Errorf("%w: field with empty path", ErrInvalidRegistry)
		}

		if _, dup := r.byPath[f.Path]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidRegistry, f.Path)
		}

		if f.Type == FieldEnum && len(f.Allowed) == 0 {
			return fmt.Errorf("%w: enum field %q has no allowed values", ErrInvalidRegistry, f.Path)
		}

		r.byPath[f.Path] = len(r.fields)
		r.fields = append(r.fields, f)

		for _, v := range f.Allowed {
			r.enumLiterals[v] = struct{}{}
		}
	}

	return nil
}

func (r *Registry) addRules(rules []Rule) error {
	seen := make(map[string]struct{}, len(rules))

	for i := range rules {
		rule := rules[i]

		if _, ok := r.byPath[rule.Field]; !ok {
			return fmt.Errorf("%w: rule for unknown field %q", ErrInvalidRegistry, rule.Field)
		}

		if _, dup := seen[rule.Field]; dup {
			return fmt.Errorf("%w: duplicate rule for %q", ErrInvalidRegistry, rule.Field)
		}

		seen[rule.Field] = struct{}{}

		if err := rule.compile(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRegistry, err)
		}

		r.rules = append(r.rules, rule)
	}

	return nil
}

func (r *Registry) addAliases(enumAliases map[string]map[string]string, equipment map[string]string) error {
	for path, table := range enumAliases {
		f, ok := r.Field(path)
		if !ok || !f.IsEnum() {
			return fmt.Errorf("%w: enum aliases for non-enum field %q", ErrInvalidRegistry, path)
		}

		lowered := make(map[string]string, len(table))

		for alias, token := range table {
			if !slices.Contains(f.Allowed, token) {
				return fmt.Errorf("%w: alias %q for %s maps to %q outside allowed values",
					ErrInvalidRegistry, alias, path, token)
			}

			lowered[strings.ToLower(alias)] = token
		}

		r.enumAliases[path] = lowered
	}

	for alias, token := range equipment {
		r.equipmentAliases[strings.ToLower(alias)] = token
	}

	return nil
}

func (r *Registry) checkReferences() error {
	check := func(section, path string) error {
		if _, ok := r.byPath[path]; !ok {
			return fmt.Errorf("%w: %s references unknown field %q", ErrInvalidRegistry, section, path)
		}

		return nil
	}

	for _, p := range r.validation.DateFields {
		if err := check("validation.date_fields", p); err != nil {
			return err
		}
	}

	for _, p := range r.validation.NumericFields {
		if err := check("validation.numeric_fields", p); err != nil {
			return err
		}
	}

	for _, w := range r.resolution.Windows {
		if err := check("resolution.windows", w.Start); err != nil {
			return err
		}

		if err := check("resolution.windows", w.End); err != nil {
			return err
		}
	}

	for _, g := range r.resolution.Addresses {
		for _, tok := range r.resolution.AddressTokens {
			if err := check("resolution.addresses", g.Prefix+"."+tok.Field); err != nil {
				return err
			}
		}
	}

	return nil
}

// Version returns the registry document version.
func (r *Registry) Version() string {
	return r.version
}

// Fields returns all fields in declaration order.
func (r *Registry) Fields() []Field {
	return r.fields
}

// Rules returns all matching rules in declaration order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Rule returns the matching rule for a field path.
func (r *Registry) Rule(path string) (*Rule, bool) {
	for i := range r.rules {
		if r.rules[i].Field == path {
			return &r.rules[i], true
		}
	}

	return nil, false
}

// Field returns the field registered for path. Paths with array indices
// that are not registered explicitly fall back to their index-0 template,
// so "load.route.3.address.city" resolves to "load.route.0.address.city".
func (r *Registry) Field(path string) (*Field, bool) {
	if i, ok := r.byPath[path]; ok {
		return &r.fields[i], true
	}

	if tmpl := TemplatePath(path); tmpl != path {
		if i, ok := r.byPath[tmpl]; ok {
			return &r.fields[i], true
		}
	}

	return nil, false
}

// Has returns true if the path resolves to a registered field.
func (r *Registry) Has(path string) bool {
	_, ok := r.Field(path)
	return ok
}

// Paths returns every registered field path in declaration order.
func (r *Registry) Paths() []string {
	paths := make([]string, len(r.fields))
	for i := range r.fields {
		paths[i] = r.fields[i].Path
	}

	return paths
}

// Description returns the user-facing description of a field.
func (r *Registry) Description(path string) string {
	if f, ok := r.Field(path); ok && f.Description != "" {
		return f.Description
	}

	return DefaultDescription
}

// RequiredFields returns the fields a row must provide given the columns it
// carries. Conditional fields are included once any column matches their
// trigger prefix.
func (r *Registry) RequiredFields(columns []string) []Field {
	var required []Field

	for _, f := range r.fields {
		switch {
		case f.Required:
			required = append(required, f)
		case f.Conditional() && anyHasPrefix(columns, f.RequiredWhen):
			required = append(required, f)
		}
	}

	return required
}

// EnumAlias maps a raw value to its canonical token through the field's alias table.
func (r *Registry) EnumAlias(path, raw string) (string, bool) {
	table, ok := r.enumAliases[path]
	if !ok {
		table, ok = r.enumAliases[TemplatePath(path)]
	}

	if !ok {
		return "", false
	}

	token, ok := table[strings.ToLower(strings.TrimSpace(raw))]

	return token, ok
}

// EquipmentAlias maps a legacy equipment spelling to its token.
func (r *Registry) EquipmentAlias(raw string) (string, bool) {
	token, ok := r.equipmentAliases[strings.ToLower(strings.TrimSpace(raw))]
	return token, ok
}

// IsEnumLiteral returns true if v is an allowed token of any enum field.
func (r *Registry) IsEnumLiteral(v string) bool {
	_, ok := r.enumLiterals[v]
	return ok
}

// Formatting returns the path tokens that drive value coercion.
func (r *Registry) Formatting() FormatTokens {
	return r.formatting
}

// Validation returns the fields that receive parseability checks.
func (r *Registry) Validation() ValidationChecks {
	return r.validation
}

// Resolution returns the related-field groups.
func (r *Registry) Resolution() Resolution {
	return r.resolution
}

// TemplatePath replaces every numeric path segment with "0".
func TemplatePath(path string) string {
	parts := strings.Split(path, ".")
	changed := false

	for i, p := range parts {
		if p == "0" {
			continue
		}

		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = "0"
			changed = true
		}
	}

	if !changed {
		return path
	}

	return strings.Join(parts, ".")
}

func anyHasPrefix(values []string, prefix string) bool {
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}

	return false
}
