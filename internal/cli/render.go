package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"load-mapper/internal/diagnostic"
	"load-mapper/internal/payload"
	"load-mapper/internal/plan"
	"load-mapper/internal/schema"
	"load-mapper/internal/validate"
)

func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))

	return t
}

func renderReport(w io.Writer, report *plan.SuggestionReport) {
	if len(report.Matches) == 0 {
		_, _ = fmt.Fprintln(w, "(no fields matched)")
	} else {
		t := newTable(w, "Field", "Source", "Origin", "Confidence", "Alternatives")

		for _, m := range report.Matches {
			alts := make([]string, 0, len(m.Alternatives))
			for _, alt := range m.Alternatives {
				alts = append(alts, fmt.Sprintf("%s (%.2f)", alt.Column, alt.Confidence))
			}

			origin := string(m.Origin)
			if m.IsAmbiguous {
				origin += " (ambiguous)"
			}

			t.AppendRow(table.Row{m.Field, m.Source, origin, fmt.Sprintf("%.2f", m.Confidence), strings.Join(alts, ", ")})
		}

		t.Render()
	}

	if len(report.Unmapped) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w)

	t := newTable(w, "Unmapped Column", "Kind", "Closest Fields")

	for _, u := range report.Unmapped {
		closest := make([]string, 0, len(u.Closest))
		for _, c := range u.Closest {
			closest = append(closest, fmt.Sprintf("%s (%.2f)", c.Field, c.Confidence))
		}

		t.AppendRow(table.Row{u.Column, u.Kind, strings.Join(closest, ", ")})
	}

	t.Render()
}

func renderMappingErrors(w io.Writer, errs []string) {
	for _, e := range errs {
		_, _ = fmt.Fprintf(w, "mapping: %s\n", e)
	}
}

func renderRowErrors(w io.Writer, errs []validate.RowError) {
	if len(errs) == 0 {
		return
	}

	t := newTable(w, "Row", "Errors")

	for _, e := range errs {
		t.AppendRow(table.Row{e.Row, strings.Join(e.Errors, "\n")})
		t.AppendSeparator()
	}

	t.Render()
}

func renderFallbacks(w io.Writer, payloads []payload.Payload) {
	t := newTable(w, "Row", "Path", "Value", "Reason")

	n := 0

	for _, p := range payloads {
		for _, f := range p.Fallbacks {
			t.AppendRow(table.Row{p.Row, f.Path, f.Value, f.Reason})
			n++
		}
	}

	if n == 0 {
		_, _ = fmt.Fprintln(w, "(no fallbacks)")
		return
	}

	t.Render()
}

func renderFields(w io.Writer, reg *schema.Registry) {
	t := newTable(w, "Path", "Type", "Required", "Allowed", "Description")

	for _, f := range reg.Fields() {
		required := ""

		switch {
		case f.Required:
			required = "yes"
		case f.RequiredWhen != "":
			required = "with " + f.RequiredWhen + "*"
		}

		t.AppendRow(table.Row{f.Path, f.Type.String(), required, strings.Join(f.Allowed, ", "), f.Description})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "Registry version %s, %d fields\n", reg.Version(), len(reg.Fields()))
}

// renderDiagnostics prints errors, then warnings.
func renderDiagnostics(w io.Writer, diags *diagnostic.Diagnostics) {
	if diags == nil {
		return
	}

	for _, d := range diags.All() {
		if d.Severity == diagnostic.DiagnosticInfo {
			continue
		}

		_, _ = fmt.Fprintln(w, d.String())
	}
}
