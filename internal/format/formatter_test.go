package format

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"load-mapper/internal/schema"
)

func newFormatter(t *testing.T) *Formatter {
	t.Helper()

	reg, err := schema.Default()
	require.NoError(t, err)

	return NewFormatter(reg)
}

func TestFormatter_Format(t *testing.T) {
	f := newFormatter(t)

	tests := []struct {
		name string
		path string
		raw  any
		want any
	}{
		{"currency float", "bidCriteria.targetCostUsd", "$1,250.50", 1250.5},
		{"float garbage", "bidCriteria.targetCostUsd", "call us", 0.0},
		{"float nil", "bidCriteria.maxBidAmountUsd", nil, 0.0},
		{"integer truncates", "load.items.0.totalWeightLbs", "42,000.9", int64(42000)},
		{"integer from int", "load.items.0.quantity", 3, int64(3)},
		{"integer garbage", "load.items.0.quantity", "three", int64(0)},
		{"sequence", "load.route.1.sequence", "2", int64(2)},
		{"date iso", "load.route.0.expectedArrivalWindowStart", "2024-03-01 09:30", "2024-03-01T09:30:00.000Z"},
		{"date us", "load.route.1.expectedArrivalWindowEnd", "3/2/2024", "2024-03-02T00:00:00.000Z"},
		{"date with zone", "bidCriteria.bidExpiration", "2024-03-01T10:00:00-05:00", "2024-03-01T15:00:00.000Z"},
		{"date garbage", "load.route.0.expectedArrivalWindowStart", "next tuesday", ""},
		{"date number", "load.route.0.expectedArrivalWindowStart", "12345", ""},
		{"enum alias", "load.mode", "Full Truckload", "FTL"},
		{"enum exact", "load.rateType", "SPOT", "SPOT"},
		{"enum case-insensitive", "load.rateType", "Dedicated", "DEDICATED"},
		{"enum indexed path", "load.route.2.stopActivity", "deliver", "DELIVERY"},
		{"enum unknown kept", "load.mode", "boat", "boat"},
		{"equipment legacy", "bidCriteria.equipment", "Step Deck", "STEPDECK"},
		{"equipment alias first", "load.equipment.equipmentType", "refrigerated", "REEFER"},
		{"equipment unknown", "load.equipment.equipmentType", "hotshot trailer", DefaultEquipment},
		{"equipment unknown legacy", "bidCriteria.equipment", "conestoga", DefaultEquipment},
		{"equipment literal kept", "bidCriteria.equipment", "CONTAINER", "CONTAINER"},
		{"equipment blank", "bidCriteria.equipment", "  ", ""},
		{"string trimmed", "customer.name", "  Acme Corp ", "Acme Corp"},
		{"string from number", "load.loadNumber", 1001, "1001"},
		{"string nil", "customer.name", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(tt.path, tt.raw))
		})
	}
}

func TestParseTime(t *testing.T) {
	got, ok := ParseTime("Jan 5, 2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseTime("")
	assert.False(t, ok)

	_, ok = ParseTime(nil)
	assert.False(t, ok)

	now := time.Now()
	got, ok = ParseTime(now)
	require.True(t, ok)
	assert.True(t, now.Equal(got))
}

func TestNumeric(t *testing.T) {
	assert.True(t, IsNumeric("$ 1,000"))
	assert.True(t, IsNumeric(12.5))
	assert.False(t, IsNumeric("SPOT"))
	assert.False(t, IsNumeric(math.NaN()))
	assert.False(t, IsNumeric(true))

	assert.Equal(t, "1000.50", CleanNumber(" $1,000.50 "))
	assert.Equal(t, int64(-3), Integer("-3.9"))
	assert.InDelta(t, 0.1, Float("0.1"), 1e-12)
}
