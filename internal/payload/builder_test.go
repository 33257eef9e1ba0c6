package payload

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"load-mapper/internal/diagnostic"
	"load-mapper/internal/schema"
	"load-mapper/internal/table"
)

func newTestBuilder(t *testing.T, logger *zap.Logger) *Builder {
	t.Helper()

	reg, err := schema.Default()
	require.NoError(t, err)

	return NewBuilder(reg, logger)
}

// decode round-trips a payload body through JSON.
func decode(t *testing.T, p Payload) map[string]any {
	t.Helper()

	data, err := json.Marshal(p.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), string(data))

	return out
}

// dig follows dotted keys and indices through decoded JSON.
func dig(t *testing.T, v any, path ...string) any {
	t.Helper()

	for _, p := range path {
		switch node := v.(type) {
		case map[string]any:
			v = node[p]
		case []any:
			i, err := strconv.Atoi(p)
			require.NoError(t, err)
			require.Less(t, i, len(node), "index %s out of range in %s", p, spew.Sdump(node))
			v = node[i]
		default:
			t.Fatalf("cannot descend into %T at %q", v, p)
		}
	}

	return v
}

func buildOne(t *testing.T, b *Builder, row *table.Row) Payload {
	t.Helper()

	tbl := table.New()
	tbl.Append(row)

	payloads := b.Build(tbl)
	require.Len(t, payloads, 1)

	return payloads[0]
}

func TestBuild_EmptyRow(t *testing.T) {
	b := newTestBuilder(t, nil)

	p := buildOne(t, b, table.NewRow())

	data, err := json.Marshal(p.Body)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"load": {"equipment": {"equipmentType": "DRY_VAN"}},
		"customer": {},
		"brokerage": {"contacts": []}
	}`, string(data))
	assert.Equal(t, []string{"load", "customer", "brokerage"}, p.Body.Keys())
}

func TestBuild_FirstStopDefaults(t *testing.T) {
	b := newTestBuilder(t, nil)

	p := buildOne(t, b, table.RowOf(
		"load.route.0.address.city", "HOT SPRINGS",
		"load.route.0.sequence", int64(1),
	))
	body := decode(t, p)

	assert.Equal(t, "HOT SPRINGS", dig(t, body, "load", "route", "0", "address", "city"))
	assert.Equal(t, "US", dig(t, body, "load", "route", "0", "address", "country"))
	assert.Equal(t, "PICKUP", dig(t, body, "load", "route", "0", "stopActivity"))
	assert.Equal(t, DefaultWindowStart, dig(t, body, "load", "route", "0", "expectedArrivalWindowStart"))
	assert.Equal(t, "2024-01-01T10:00:00.000Z", dig(t, body, "load", "route", "0", "expectedArrivalWindowEnd"))

	var paths []string
	for _, f := range p.Fallbacks {
		paths = append(paths, f.Path)
	}

	assert.Contains(t, paths, "load.route.0.address.country")
	assert.NotContains(t, paths, "load.route.0.sequence")
}

func TestBuild_LaterStops(t *testing.T) {
	b := newTestBuilder(t, nil)

	p := buildOne(t, b, table.RowOf(
		"load.route.0.address.city", "Dallas",
		"load.route.0.expectedArrivalWindowStart", "2024-03-01 08:00",
		"load.route.1.stopActivity", "delivery",
	))
	body := decode(t, p)
	stop := dig(t, body, "load", "route", "1")

	assert.Equal(t, "DELIVERY", dig(t, stop, "stopActivity"))
	assert.Equal(t, "Dallas", dig(t, stop, "address", "city"))
	assert.Equal(t, "Unknown Street1", dig(t, stop, "address", "street1"))
	assert.Equal(t, "Unknown Stateorprovince", dig(t, stop, "address", "stateOrProvince"))
	assert.Equal(t, "US", dig(t, stop, "address", "country"))
	assert.Equal(t, "2024-03-02T08:00:00.000Z", dig(t, stop, "expectedArrivalWindowStart"))
	assert.Equal(t, "2024-03-02T10:00:00.000Z", dig(t, stop, "expectedArrivalWindowEnd"))
}

func TestBuild_SequencesFollowArrayOrder(t *testing.T) {
	b := newTestBuilder(t, nil)

	p := buildOne(t, b, table.RowOf(
		"load.route.2.address.city", "Austin",
		"load.route.2.sequence", int64(3),
		"load.route.0.address.city", "Dallas",
		"load.route.0.sequence", int64(9),
	))
	body := decode(t, p)

	route, ok := dig(t, body, "load", "route").([]any)
	require.True(t, ok)
	require.Len(t, route, 3)

	for i := range route {
		assert.InDelta(t, float64(i+1), dig(t, route[i], "sequence"), 0)
	}

	assert.Equal(t, "Dallas", dig(t, route[0], "address", "city"))
	assert.Equal(t, "DELIVERY", dig(t, route[1], "stopActivity"))
	assert.Equal(t, "Austin", dig(t, route[2], "address", "city"))
}

func TestBuild_SkippedStopKeepsPosition(t *testing.T) {
	b := newTestBuilder(t, nil)

	body := decode(t, buildOne(t, b, table.RowOf("load.route.1.address.city", "Dallas")))

	route, ok := dig(t, body, "load", "route").([]any)
	require.True(t, ok)
	require.Len(t, route, 2)

	assert.Equal(t, "PICKUP", dig(t, route[0], "stopActivity"))
	assert.Equal(t, DefaultWindowStart, dig(t, route[0], "expectedArrivalWindowStart"))
	assert.Equal(t, "US", dig(t, route[0], "address", "country"))

	assert.Equal(t, "DELIVERY", dig(t, route[1], "stopActivity"))
	assert.Equal(t, "Dallas", dig(t, route[1], "address", "city"))
	assert.Equal(t, "2024-01-02T08:00:00.000Z", dig(t, route[1], "expectedArrivalWindowStart"))
	assert.InDelta(t, 2, dig(t, route[1], "sequence"), 0)
}

func TestBuild_RouteWithoutIndex(t *testing.T) {
	b := newTestBuilder(t, nil)

	body := decode(t, buildOne(t, b, table.RowOf("load.route.stopActivity", "PICKUP")))

	route, ok := dig(t, body, "load", "route").([]any)
	require.True(t, ok)
	require.Len(t, route, 1)
	assert.InDelta(t, 1, dig(t, route[0], "sequence"), 0)
}

func TestBuild_Equipment(t *testing.T) {
	b := newTestBuilder(t, nil)

	tests := []struct {
		name string
		row  *table.Row
		want string
	}{
		{
			name: "stray key folded",
			row:  table.RowOf("load.equipmentType", "reefer"),
			want: "REEFER",
		},
		{
			name: "scalar equipment",
			row:  table.RowOf("load.equipment", "flat"),
			want: "FLATBED",
		},
		{
			name: "double nesting",
			row:  table.RowOf("load.equipment.equipmentType.equipmentType", "FLATBED"),
			want: "FLATBED",
		},
		{
			name: "from bid criteria",
			row:  table.RowOf("bidCriteria.equipment", "REEFER"),
			want: "REEFER",
		},
		{
			name: "truckload mode overrides bid criteria",
			row:  table.RowOf("bidCriteria.equipment", "REEFER", "load.mode", "FTL"),
			want: "DRY_VAN",
		},
		{
			name: "drayage keeps bid criteria",
			row:  table.RowOf("bidCriteria.equipment", "FLATBED", "load.mode", "DRAYAGE"),
			want: "FLATBED",
		},
		{
			name: "mapped equipment ignores mode",
			row:  table.RowOf("load.equipment.equipmentType", "REEFER", "load.mode", "LTL"),
			want: "REEFER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := decode(t, buildOne(t, b, tt.row))

			assert.Equal(t, tt.want, dig(t, body, "load", "equipment", "equipmentType"))
			assert.NotContains(t, dig(t, body, "load"), "equipmentType")
		})
	}
}

func TestBuild_BidCriteria(t *testing.T) {
	b := newTestBuilder(t, nil)

	t.Run("derived", func(t *testing.T) {
		body := decode(t, buildOne(t, b, table.RowOf(
			"bidCriteria.targetCostUsd", "$1,000",
			"load.items.0.totalWeightLbs", "1200",
			"load.items.1.totalWeightLbs", int64(800),
		)))

		assert.Equal(t, "DRY_VAN", dig(t, body, "bidCriteria", "equipment"))
		assert.InDelta(t, 2000, dig(t, body, "bidCriteria", "totalWeightLbs"), 0)
		assert.InDelta(t, 1100.0, dig(t, body, "bidCriteria", "maxBidAmountUsd"), 1e-9)
	})

	t.Run("defaults", func(t *testing.T) {
		body := decode(t, buildOne(t, b, table.RowOf("bidCriteria.service", "STANDARD")))

		assert.InDelta(t, DefaultWeightLbs, dig(t, body, "bidCriteria", "totalWeightLbs"), 0)
		assert.InDelta(t, DefaultMaxBidUsd, dig(t, body, "bidCriteria", "maxBidAmountUsd"), 0)
	})
}

func TestBuild_Contacts(t *testing.T) {
	b := newTestBuilder(t, nil)

	body := decode(t, buildOne(t, b, table.RowOf(
		"carrier.contacts.0.name", "Bob",
		"brokerage.contacts.name", "Ann",
	)))

	assert.Equal(t, "DISPATCHER", dig(t, body, "carrier", "contacts", "0", "role"))
	assert.Equal(t, "ACCOUNT_MANAGER", dig(t, body, "brokerage", "contacts", "0", "role"))
	assert.Equal(t, "Ann", dig(t, body, "brokerage", "contacts", "0", "name"))
}

func TestBuild_NoCarrierContactsWithoutCarrier(t *testing.T) {
	b := newTestBuilder(t, nil)

	body := decode(t, buildOne(t, b, table.RowOf("load.loadNumber", "X")))

	assert.Equal(t, "X", dig(t, body, "load", "loadNumber"))
	assert.NotContains(t, body, "carrier")
}

func TestBuild_SkipsBlankValues(t *testing.T) {
	b := newTestBuilder(t, nil)

	body := decode(t, buildOne(t, b, table.RowOf(
		"customer.name", "  ",
		"customer.customerId", nil,
		"load.loadNumber", "L-1",
	)))

	assert.Equal(t, map[string]any{}, body["customer"])
}

func TestBuild_StructuralConflict(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := newTestBuilder(t, zap.New(core))

	tbl := table.New()
	tbl.Append(table.RowOf(
		"load.route.0.address.city", "Dallas",
		"load.route.city", "Austin",
	))

	payloads, diags := b.BuildWithDiagnostics(tbl)
	require.Len(t, payloads, 1)

	conflicts := diags.WithCode(diagnostic.CodeStructuralConflict)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 1, conflicts[0].Row)
	assert.Equal(t, "load.route.city", conflicts[0].FieldPath)
	assert.Contains(t, conflicts[0].Message, `key "city" under Array node`)

	assert.Equal(t, 1, logs.FilterMessage("structural conflict").Len())

	body := decode(t, payloads[0])
	assert.Equal(t, "Dallas", dig(t, body, "load", "route", "0", "address", "city"))
}

func TestNode_Kind(t *testing.T) {
	var missing *Node

	assert.Equal(t, "Object", NewObject().Kind().String())
	assert.Equal(t, "Array", NewArray().Kind().String())
	assert.Equal(t, "Leaf", NewLeaf(1).Kind().String())
	assert.Equal(t, "Kind(0)", missing.Kind().String())
}

func TestNode_MarshalKeepsOrder(t *testing.T) {
	n := NewObject()
	n.Set("zeta", NewLeaf(1))
	n.Set("alpha", NewArray(NewLeaf("a"), nil))
	n.Set("mid", NewObject())

	data, err := json.Marshal(n)
	require.NoError(t, err)

	assert.Equal(t, `{"zeta":1,"alpha":["a",null],"mid":{}}`, string(data))
}
