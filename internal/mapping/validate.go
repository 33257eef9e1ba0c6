package mapping

import (
	"fmt"

	"load-mapper/internal/diagnostic"
	"load-mapper/internal/match"
	"load-mapper/internal/schema"
)

// maxSuggestions caps "did you mean" hints per diagnostic.
const maxSuggestions = 3

// Validate checks a field mapping against the registry. It reports
// malformed paths and empty column names as errors, and unknown target
// fields and empty literals as warnings. Column existence is checked when
// the mapping is applied.
func Validate(fm *FieldMapping, reg *schema.Registry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if fm == nil {
		res.AddError("mapping_is_nil", "field mapping is nil", 0, "")
		return res
	}

	if reg == nil {
		res.AddError("registry_is_nil", "schema registry is nil", 0, "")
		return res
	}

	for _, e := range fm.Entries() {
		if _, err := ParsePath(e.Field); err != nil {
			res.AddError(diagnostic.CodeInvalidPath, err.Error(), 0, e.Field)
			continue
		}

		if !reg.Has(e.Field) {
			res.AddWarning(diagnostic.CodeUnknownField,
				fmt.Sprintf("field %q is not in the schema registry", e.Field), 0, e.Field,
				match.Closest(e.Field, reg.Paths(), maxSuggestions)...)
		}

		switch {
		case e.Source.Kind == SourceColumn && e.Source.Value == "":
			res.AddError(diagnostic.CodeEmptySource, "no source column given", 0, e.Field)
		case e.Source.IsLiteral() && e.Source.Value == "":
			res.AddWarning(diagnostic.CodeEmptySource, "literal value is empty and will be skipped", 0, e.Field)
		}
	}

	return res
}
