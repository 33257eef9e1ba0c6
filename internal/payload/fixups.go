package payload

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"load-mapper/internal/format"
	"load-mapper/internal/table"
)

// Values used when a row does not provide them.
const (
	DefaultCountry       = "US"
	DefaultEquipmentType = format.DefaultEquipment
	DefaultWindowStart   = "2024-01-01T08:00:00.000Z"
	DefaultWindowEnd     = "2024-01-01T17:00:00.000Z"
	DefaultWeightLbs     = 1000
	DefaultMaxBidUsd     = 2000.0

	brokerageContactRole = "ACCOUNT_MANAGER"
	carrierContactRole   = "DISPATCHER"

	windowLength = 2 * time.Hour
	windowStart  = "expectedArrivalWindowStart"
	windowEnd    = "expectedArrivalWindowEnd"
)

var (
	// backfilledAddressFields are copied from the first stop into later stops.
	backfilledAddressFields = []string{"street1", "city", "stateOrProvince", "postalCode"}

	maxBidMarkup = decimal.RequireFromString("1.1")
)

// fixer applies the schema-compliance fixups to one payload tree and
// records every value it fabricates.
type fixer struct {
	fallbacks []Fallback
}

func (fx *fixer) apply(root *Node) {
	ensureTopLevel(root)

	load := root.Child(KeyLoad)

	normalizeRoute(load)
	foldEquipment(load)

	route := load.Child("route")

	fx.stopDefaults(route)
	fx.arrivalWindows(route)
	fx.sequences(route)
	fx.bidCriteria(root)
	fx.equipment(root)

	prune(root, true)
	ensureTopLevel(root)

	fx.contacts(root.Child(KeyBrokerage), KeyBrokerage, brokerageContactRole)

	if carrier := root.Child("carrier"); carrier.IsObject() {
		fx.contacts(carrier, "carrier", carrierContactRole)
	}
}

func (fx *fixer) set(obj *Node, key, path string, value any, reason string) {
	obj.Set(key, NewLeaf(value))
	fx.fallbacks = append(fx.fallbacks, Fallback{Path: path, Value: value, Reason: reason})
}

func ensureTopLevel(root *Node) {
	for _, key := range requiredTopLevel {
		if !root.Child(key).IsObject() {
			root.Set(key, NewObject())
		}
	}
}

// normalizeRoute wraps a route written without stop indices into a
// one-stop array. Stops skipped by the row become empty objects so every
// stop keeps its position.
func normalizeRoute(load *Node) {
	route := load.Child("route")

	switch {
	case route.IsObject():
		load.Set("route", NewArray(route))
	case route.IsArray():
		for i, stop := range route.Items() {
			if stop == nil {
				route.SetAt(i, NewObject())
			}
		}
	}
}

// foldEquipment moves equipment-prefixed keys of the load into the
// load.equipment object. A scalar load.equipment becomes its equipmentType.
func foldEquipment(load *Node) {
	eq := load.Child("equipment")

	if eq.IsLeaf() {
		obj := NewObject()
		obj.Set("equipmentType", eq)
		load.Set("equipment", obj)
		eq = obj
	}

	var stray []string

	for _, k := range load.Keys() {
		if k != "equipment" && strings.HasPrefix(k, "equipment") {
			stray = append(stray, k)
		}
	}

	if len(stray) == 0 {
		return
	}

	if !eq.IsObject() {
		eq = NewObject()
		load.Set("equipment", eq)
	}

	for _, k := range stray {
		child := load.Child(k)
		load.Delete(k)

		if _, ok := eq.Get(k); !ok {
			eq.Set(k, child)
		}
	}
}

func (fx *fixer) stopDefaults(route *Node) {
	firstAddr := route.At(0).Child("address")
	title := cases.Title(language.English)

	for i, stop := range route.Items() {
		if !stop.IsObject() {
			continue
		}

		base := fmt.Sprintf("load.route.%d", i)

		if isEmpty(stop.Child("stopActivity")) {
			activity := "DELIVERY"
			if i == 0 {
				activity = "PICKUP"
			}

			fx.set(stop, "stopActivity", base+".stopActivity", activity, "stop activity from position")
		}

		addr := stop.Child("address")
		if addr == nil {
			addr = NewObject()
			stop.Set("address", addr)

			if i == 0 {
				firstAddr = addr
			}
		}

		if !addr.IsObject() {
			continue
		}

		if isEmpty(addr.Child("country")) {
			fx.set(addr, "country", base+".address.country", DefaultCountry, "default country")
		}

		if i == 0 {
			continue
		}

		for _, field := range backfilledAddressFields {
			if !isEmpty(addr.Child(field)) {
				continue
			}

			path := base + ".address." + field

			if src := firstAddr.Child(field); !isEmpty(src) {
				fx.set(addr, field, path, src.Value(), "copied from first stop")
				continue
			}

			fx.set(addr, field, path, "Unknown "+title.String(field), "placeholder")
		}
	}
}

func (fx *fixer) arrivalWindows(route *Node) {
	for i, stop := range route.Items() {
		if !stop.IsObject() {
			continue
		}

		base := fmt.Sprintf("load.route.%d.", i)

		if isEmpty(stop.Child(windowStart)) {
			value, reason := DefaultWindowStart, "default window start"

			if i > 0 {
				if t, ok := format.ParseTime(route.At(0).Child(windowStart).Value()); ok {
					value = t.AddDate(0, 0, 1).UTC().Format(format.TimeLayout)
					reason = "first stop start plus one day"
				}
			}

			fx.set(stop, windowStart, base+windowStart, value, reason)
		}

		if isEmpty(stop.Child(windowEnd)) {
			value, reason := DefaultWindowEnd, "default window end"

			if t, ok := format.ParseTime(stop.Child(windowStart).Value()); ok {
				value = t.Add(windowLength).UTC().Format(format.TimeLayout)
				reason = "window start plus two hours"
			}

			fx.set(stop, windowEnd, base+windowEnd, value, reason)
		}
	}
}

func (fx *fixer) sequences(route *Node) {
	for i, stop := range route.Items() {
		if !stop.IsObject() {
			continue
		}

		want := int64(i + 1)
		if seq := stop.Child("sequence"); seq.IsLeaf() && seq.Value() == want {
			continue
		}

		fx.set(stop, "sequence", fmt.Sprintf("load.route.%d.sequence", i), want, "renumbered by position")
	}
}

func (fx *fixer) bidCriteria(root *Node) {
	bc := root.Child("bidCriteria")
	if !bc.IsObject() {
		return
	}

	load := root.Child(KeyLoad)

	if isEmpty(bc.Child("equipment")) {
		equipment := DefaultEquipmentType

		switch mode := leafString(load.Child("mode")); mode {
		case "REEFER", "FLATBED":
			equipment = mode
		}

		fx.set(bc, "equipment", "bidCriteria.equipment", equipment, "equipment from load mode")
	}

	if isZero(bc.Child("totalWeightLbs")) {
		total := decimal.Zero

		for _, item := range load.Child("items").Items() {
			if d, ok := format.Decimal(item.Child("totalWeightLbs").Value()); ok {
				total = total.Add(d)
			}
		}

		if total.IsPositive() {
			fx.set(bc, "totalWeightLbs", "bidCriteria.totalWeightLbs", total.IntPart(), "summed from items")
		} else {
			fx.set(bc, "totalWeightLbs", "bidCriteria.totalWeightLbs", int64(DefaultWeightLbs), "default weight")
		}
	}

	if isZero(bc.Child("maxBidAmountUsd")) {
		target, ok := format.Decimal(bc.Child("targetCostUsd").Value())

		if ok && target.IsPositive() {
			fx.set(bc, "maxBidAmountUsd", "bidCriteria.maxBidAmountUsd",
				target.Mul(maxBidMarkup).InexactFloat64(), "110% of target cost")
		} else {
			fx.set(bc, "maxBidAmountUsd", "bidCriteria.maxBidAmountUsd", DefaultMaxBidUsd, "default max bid")
		}
	}
}

func (fx *fixer) equipment(root *Node) {
	load := root.Child(KeyLoad)
	eq := load.Child("equipment")

	if !eq.IsObject() {
		typ, reason := DefaultEquipmentType, "default equipment type"

		if v := leafString(root.Child("bidCriteria").Child("equipment")); v != "" {
			typ, reason = v, "copied from bid criteria"
		}

		switch leafString(load.Child("mode")) {
		case "LTL", "FTL":
			typ, reason = DefaultEquipmentType, "dry van for truckload modes"
		}

		eq = NewObject()
		load.Set("equipment", eq)
		fx.set(eq, "equipmentType", "load.equipment.equipmentType", typ, reason)

		return
	}

	et := eq.Child("equipmentType")

	switch {
	case et.IsLeaf():
		if _, ok := et.Value().(string); !ok {
			eq.Set("equipmentType", NewLeaf(table.String(et.Value())))
		}
	case et.IsObject() && et.Child("equipmentType").IsLeaf():
		eq.Set("equipmentType", et.Child("equipmentType"))
	default:
		fx.set(eq, "equipmentType", "load.equipment.equipmentType", DefaultEquipmentType, "default equipment type")
	}
}

// contacts forces owner.contacts to an array and gives every contact a role.
func (fx *fixer) contacts(owner *Node, name, role string) {
	switch c := owner.Child("contacts"); {
	case c == nil:
		owner.Set("contacts", NewArray())
	case !c.IsArray():
		owner.Set("contacts", NewArray(c))
	}

	for i, contact := range owner.Child("contacts").Items() {
		if contact.IsObject() && isEmpty(contact.Child("role")) {
			fx.set(contact, "role", fmt.Sprintf("%s.contacts.%d.role", name, i), role, "default contact role")
		}
	}
}

// prune removes empty objects and arrays, and nil or blank array items.
// The required top-level objects survive at the root.
func prune(n *Node, root bool) {
	switch {
	case n.IsObject():
		for _, k := range slices.Clone(n.Keys()) {
			child := n.Child(k)
			if child.IsLeaf() {
				continue
			}

			prune(child, false)

			if child.Len() == 0 && !(root && slices.Contains(requiredTopLevel, k)) {
				n.Delete(k)
			}
		}

	case n.IsArray():
		kept := make([]*Node, 0, n.Len())

		for _, item := range n.Items() {
			switch {
			case item == nil:
				continue
			case item.IsLeaf():
				if table.IsBlank(item.Value()) {
					continue
				}
			default:
				prune(item, false)

				if item.Len() == 0 {
					continue
				}
			}

			kept = append(kept, item)
		}

		n.setItems(kept)
	}
}

func isEmpty(n *Node) bool {
	if n == nil {
		return true
	}

	return n.IsLeaf() && table.IsBlank(n.Value())
}

func isZero(n *Node) bool {
	if isEmpty(n) {
		return true
	}

	d, ok := format.Decimal(n.Value())

	return ok && d.IsZero()
}

func leafString(n *Node) string {
	return strings.TrimSpace(table.String(n.Value()))
}
