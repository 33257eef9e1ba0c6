package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"load-mapper/internal/diagnostic"
	"load-mapper/internal/mapping"
	"load-mapper/internal/table"
)

func sourceTable() *table.Table {
	t := table.New("Load Number", "City", "Weight", "Notes")
	t.Append(table.RowOf("Load Number", "L-1", "City", "HOT SPRINGS", "Weight", "42000", "Notes", nil))
	t.Append(table.RowOf("Load Number", "L-2", "City", "Dallas", "Weight", "18000", "Notes", "fragile"))

	return t
}

func TestApply_CopiesColumnsAndLiterals(t *testing.T) {
	fm := mapping.New(
		mapping.Entry{Field: "load.loadNumber", Source: mapping.Column("Load Number")},
		mapping.Entry{Field: "load.mode", Source: mapping.Manual("FTL")},
		mapping.Entry{Field: "load.rateType", Source: mapping.Default("SPOT")},
	)

	out, errs := NewApplier(nil).Apply(sourceTable(), fm)

	assert.Empty(t, errs)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"load.loadNumber", "load.mode", "load.rateType"}, out.Columns)

	for i, want := range []string{"L-1", "L-2"} {
		row := out.Rows[i]
		assert.Equal(t, want, row.Value("load.loadNumber"))
		assert.Equal(t, "FTL", row.Value("load.mode"))
		assert.Equal(t, "SPOT", row.Value("load.rateType"))
	}
}

func TestApply_LogsLiteralSources(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	fm := mapping.New(
		mapping.Entry{Field: "load.loadNumber", Source: mapping.Column("Load Number")},
		mapping.Entry{Field: "load.mode", Source: mapping.Manual("FTL")},
		mapping.Entry{Field: "load.rateType", Source: mapping.Default("SPOT")},
	)

	NewApplier(zap.New(core)).Apply(sourceTable(), fm)

	entries := logs.FilterMessage("literal broadcast").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "load.mode", entries[0].ContextMap()["field"])
	assert.Equal(t, "Manual", entries[0].ContextMap()["source"])
	assert.Equal(t, "Default", entries[1].ContextMap()["source"])
}

func TestApply_MissingColumn(t *testing.T) {
	fm := mapping.New(
		mapping.Entry{Field: "load.loadNumber", Source: mapping.Column("Load Numbr")},
		mapping.Entry{Field: "load.mode", Source: mapping.Manual("FTL")},
	)

	res := NewApplier(nil).Run(sourceTable(), fm)

	assert.Equal(t, []string{"Column 'Load Numbr' not found in uploaded file"}, res.Errors)
	assert.False(t, res.Table.HasColumn("load.loadNumber"))
	assert.True(t, res.Table.HasColumn("load.mode"))

	found := res.Diagnostics.WithCode(diagnostic.CodeColumnNotFound)
	require.Len(t, found, 1)
	assert.Equal(t, "load.loadNumber", found[0].FieldPath)
	assert.Contains(t, found[0].Suggestions, "Load Number")
}

func TestApply_StopSequences(t *testing.T) {
	fm := mapping.New(
		mapping.Entry{Field: "load.route.0.address.city", Source: mapping.Column("City")},
		mapping.Entry{Field: "load.route.2.address.city", Source: mapping.Manual("Austin")},
		mapping.Entry{Field: "load.route.1.sequence", Source: mapping.Manual("7")},
	)

	out, _ := NewApplier(nil).Apply(sourceTable(), fm)

	for _, row := range out.Rows {
		assert.Equal(t, int64(1), row.Value("load.route.0.sequence"))
		assert.Equal(t, int64(3), row.Value("load.route.2.sequence"))
		assert.Equal(t, "7", row.Value("load.route.1.sequence"), "stops with only a sequence keep it")
	}
}

func TestApply_DefaultItems(t *testing.T) {
	tests := []struct {
		name       string
		fm         *mapping.FieldMapping
		wantItems  bool
		wantWeight []any
	}{
		{
			name: "weight outside items",
			fm: mapping.New(
				mapping.Entry{Field: "bidCriteria.totalWeightLbs", Source: mapping.Column("Weight")},
			),
			wantItems:  true,
			wantWeight: []any{"42000", "18000"},
		},
		{
			name: "quantity only",
			fm: mapping.New(
				mapping.Entry{Field: "load.handlingUnitQty", Source: mapping.Manual("3")},
			),
			wantItems: true,
		},
		{
			name: "items already mapped",
			fm: mapping.New(
				mapping.Entry{Field: "bidCriteria.totalWeightLbs", Source: mapping.Column("Weight")},
				mapping.Entry{Field: "load.items.0.totalWeightLbs", Source: mapping.Column("Weight")},
			),
		},
		{
			name: "no weight or quantity",
			fm: mapping.New(
				mapping.Entry{Field: "load.loadNumber", Source: mapping.Column("Load Number")},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := NewApplier(nil).Apply(sourceTable(), tt.fm)

			if !tt.wantItems {
				assert.False(t, out.HasColumn("load.items.0.quantity"))
				return
			}

			assert.Equal(t, []any{int64(1), int64(1)}, out.Column("load.items.0.quantity"))

			if tt.wantWeight == nil {
				assert.False(t, out.HasColumn("load.items.0.totalWeightLbs"))
				return
			}

			assert.Equal(t, tt.wantWeight, out.Column("load.items.0.totalWeightLbs"))
		})
	}
}

func TestApply_EmptySource(t *testing.T) {
	fm := mapping.New(mapping.Entry{Field: "load.mode", Source: mapping.Manual("FTL")})

	out, errs := NewApplier(nil).Apply(nil, fm)

	assert.Empty(t, errs)
	assert.Equal(t, 0, out.Len())
}
