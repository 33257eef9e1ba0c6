package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"load-mapper/internal/mapping"
	"load-mapper/internal/match"
	"load-mapper/internal/schema"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	reg, err := schema.Default()
	require.NoError(t, err)

	return NewResolver(reg, nil)
}

func columnOf(t *testing.T, fm *mapping.FieldMapping, field string) string {
	t.Helper()

	src, ok := fm.Get(field)
	require.True(t, ok, "field %s not mapped", field)
	assert.Equal(t, mapping.SourceColumn, src.Kind)

	return src.Value
}

func TestFromSuggestions(t *testing.T) {
	fm := FromSuggestions([]match.Suggestion{
		{Field: "load.loadNumber", Column: "Load #", Confidence: 1.9},
		{Field: "load.mode", Column: "load.mode", Confidence: 1, Exact: true},
	})

	assert.Equal(t, []string{"load.loadNumber", "load.mode"}, fm.Fields())
	assert.Equal(t, "Load #", columnOf(t, fm, "load.loadNumber"))
}

func TestResolver_WindowEnd(t *testing.T) {
	r := newTestResolver(t)

	in := mapping.New(mapping.Entry{
		Field:  "load.route.0.expectedArrivalWindowStart",
		Source: mapping.Column("Pickup Appt Start"),
	})
	columns := []string{"Pickup Appt Start", "Pickup Appt End", "Notes"}

	out := r.Resolve(in, columns, nil)

	assert.Equal(t, "Pickup Appt End", columnOf(t, out, "load.route.0.expectedArrivalWindowEnd"))
	assert.Equal(t, 1, in.Len(), "input must not be modified")
}

func TestResolver_WindowEndNeedsStart(t *testing.T) {
	r := newTestResolver(t)

	out := r.Resolve(&mapping.FieldMapping{}, []string{"Pickup Appt End"}, nil)

	assert.Equal(t, 0, out.Len())
}

func TestResolver_WindowEndRejectsNonDates(t *testing.T) {
	r := newTestResolver(t)

	in := mapping.New(mapping.Entry{
		Field:  "load.route.0.expectedArrivalWindowStart",
		Source: mapping.Column("Pickup Appt Start"),
	})
	columns := []string{"Pickup Appt Start", "Pickup Appt End"}

	tests := []struct {
		name    string
		samples map[string][]string
		want    bool
	}{
		{
			name:    "timestamps",
			samples: map[string][]string{"Pickup Appt End": {"2024-03-01 10:00"}},
			want:    true,
		},
		{
			name:    "free text",
			samples: map[string][]string{"Pickup Appt End": {"call first"}},
			want:    false,
		},
		{
			name:    "empty column",
			samples: map[string][]string{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Resolve(in, columns, tt.samples)
			assert.Equal(t, tt.want, out.Has("load.route.0.expectedArrivalWindowEnd"))
		})
	}
}

func TestResolver_AddressSiblings(t *testing.T) {
	r := newTestResolver(t)

	in := mapping.New(mapping.Entry{
		Field:  "load.route.0.address.city",
		Source: mapping.Column("Pickup City"),
	})
	columns := []string{"Pickup City", "Pickup Street", "Pickup State", "Pickup Zip", "Weight"}

	out := r.Resolve(in, columns, nil)

	assert.Equal(t, "Pickup Street", columnOf(t, out, "load.route.0.address.street1"))
	assert.Equal(t, "Pickup State", columnOf(t, out, "load.route.0.address.stateOrProvince"))
	assert.Equal(t, "Pickup Zip", columnOf(t, out, "load.route.0.address.postalCode"))
	assert.False(t, out.Has("load.route.1.address.city"), "delivery group was never triggered")
}

func TestResolver_NeverOverwrites(t *testing.T) {
	r := newTestResolver(t)

	in := mapping.New(
		mapping.Entry{Field: "load.route.0.address.city", Source: mapping.Column("Pickup City")},
		mapping.Entry{Field: "load.route.0.address.street1", Source: mapping.Manual("1 Main St")},
	)
	columns := []string{"Pickup City", "Pickup Street"}

	out := r.Resolve(in, columns, nil)

	src, ok := out.Get("load.route.0.address.street1")
	require.True(t, ok)
	assert.Equal(t, mapping.Manual("1 Main St"), src)
}

func TestResolver_ColumnUsedOnce(t *testing.T) {
	r := newTestResolver(t)

	in := mapping.New(
		mapping.Entry{Field: "load.route.0.address.city", Source: mapping.Column("Origin City")},
		mapping.Entry{Field: "load.route.1.address.city", Source: mapping.Column("Dest City")},
	)
	columns := []string{"Origin City", "Dest City", "Origin Dest Zip"}

	out := r.Resolve(in, columns, nil)

	assert.Equal(t, "Origin Dest Zip", columnOf(t, out, "load.route.0.address.postalCode"))
	assert.False(t, out.Has("load.route.1.address.postalCode"))
}

func TestResolver_Idempotent(t *testing.T) {
	r := newTestResolver(t)

	in := mapping.New(
		mapping.Entry{Field: "load.route.0.address.city", Source: mapping.Column("Pickup City")},
		mapping.Entry{Field: "load.route.0.expectedArrivalWindowStart", Source: mapping.Column("Pickup Appt Start")},
	)
	columns := []string{"Pickup City", "Pickup Appt Start", "Pickup Appt End", "Pickup Zip"}

	once := r.Resolve(in, columns, nil)
	twice := r.Resolve(once, columns, nil)

	assert.Equal(t, once.Entries(), twice.Entries())
}

func TestGenerateReport(t *testing.T) {
	reg, err := schema.Default()
	require.NoError(t, err)

	columns := []string{"load.mode", "Pickup City", "Mystery"}
	samples := map[string][]string{
		"load.mode":   {"FTL", "LTL"},
		"Pickup City": {"Dallas"},
		"Mystery":     {"blue", "green"},
	}

	analysis := match.NewAnalyzer(reg, match.DefaultConfig(), nil).Analyze(columns, samples)

	fm := FromSuggestions(analysis.Suggestions())
	fm.Set("load.status", mapping.Manual("DRAFT"))

	report := GenerateReport(fm, analysis)

	byField := make(map[string]MatchReport)
	for _, m := range report.Matches {
		byField[m.Field] = m
	}

	mode, ok := byField["load.mode"]
	require.True(t, ok)
	assert.Equal(t, OriginExact, mode.Origin)
	assert.InDelta(t, 1.0, mode.Confidence, 1e-9)

	status, ok := byField["load.status"]
	require.True(t, ok)
	assert.Equal(t, OriginManual, status.Origin)

	var unmapped []string
	for _, u := range report.Unmapped {
		unmapped = append(unmapped, u.Column)
	}

	assert.Contains(t, unmapped, "Mystery")
	assert.NotContains(t, unmapped, "load.mode")

	text := FormatReport(report)
	assert.Contains(t, text, "load.mode <- load.mode [exact, 1.00]")
	assert.Contains(t, text, "Mystery (string)")
}
