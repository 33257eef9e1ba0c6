package payload

import (
	"bytes"
	"encoding/json"
	"slices"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind is the shape of a payload node.
type Kind int

const (
	_ Kind = iota // zero value is not a valid node

	KindObject
	KindArray
	KindLeaf
)

// Node is one value in a payload tree: an ordered object, an array, or a
// scalar leaf. Array items may be nil placeholders until written.
type Node struct {
	kind   Kind
	keys   []string
	fields map[string]*Node
	items  []*Node
	value  any
}

// NewObject creates an empty object node.
func NewObject() *Node {
	return &Node{kind: KindObject, fields: make(map[string]*Node)}
}

// NewArray creates an array node holding items.
func NewArray(items ...*Node) *Node {
	return &Node{kind: KindArray, items: items}
}

// NewLeaf creates a scalar node.
func NewLeaf(v any) *Node {
	return &Node{kind: KindLeaf, value: v}
}

// Kind returns the node's shape.
func (n *Node) Kind() Kind {
	if n == nil {
		return 0
	}

	return n.kind
}

func (n *Node) IsObject() bool { return n != nil && n.kind == KindObject }
func (n *Node) IsArray() bool  { return n != nil && n.kind == KindArray }
func (n *Node) IsLeaf() bool   { return n != nil && n.kind == KindLeaf }

// Value returns a leaf's scalar, or nil for other kinds.
func (n *Node) Value() any {
	if !n.IsLeaf() {
		return nil
	}

	return n.value
}

// Get returns an object member.
func (n *Node) Get(key string) (*Node, bool) {
	if !n.IsObject() {
		return nil, false
	}

	child, ok := n.fields[key]

	return child, ok
}

// Child returns an object member or nil.
func (n *Node) Child(key string) *Node {
	child, _ := n.Get(key)
	return child
}

// Set assigns an object member, keeping its position when it already exists.
func (n *Node) Set(key string, child *Node) {
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}

	n.fields[key] = child
}

// Delete removes an object member.
func (n *Node) Delete(key string) {
	if _, ok := n.fields[key]; !ok {
		return
	}

	delete(n.fields, key)
	n.keys = slices.DeleteFunc(n.keys, func(k string) bool { return k == key })
}

// Keys returns an object's member names in insertion order.
func (n *Node) Keys() []string {
	if !n.IsObject() {
		return nil
	}

	return n.keys
}

// Len returns the number of members or items.
func (n *Node) Len() int {
	switch {
	case n.IsObject():
		return len(n.keys)
	case n.IsArray():
		return len(n.items)
	default:
		return 0
	}
}

// Items returns an array's items.
func (n *Node) Items() []*Node {
	if !n.IsArray() {
		return nil
	}

	return n.items
}

// At returns the array item at i, or nil.
func (n *Node) At(i int) *Node {
	if !n.IsArray() || i < 0 || i >= len(n.items) {
		return nil
	}

	return n.items[i]
}

// SetAt assigns the array item at i, growing the array with nil
// placeholders as needed.
func (n *Node) SetAt(i int, child *Node) {
	n.Grow(i + 1)
	n.items[i] = child
}

// Grow extends an array to at least size items.
func (n *Node) Grow(size int) {
	for len(n.items) < size {
		n.items = append(n.items, nil)
	}
}

// Append adds an item to an array.
func (n *Node) Append(child *Node) {
	n.items = append(n.items, child)
}

// setItems replaces an array's items.
func (n *Node) setItems(items []*Node) {
	n.items = items
}

// Interface converts the tree to plain maps, slices and scalars. Object
// key order is lost.
func (n *Node) Interface() any {
	switch {
	case n.IsObject():
		m := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			m[k] = n.fields[k].Interface()
		}

		return m
	case n.IsArray():
		s := make([]any, len(n.items))
		for i, item := range n.items {
			s[i] = item.Interface()
		}

		return s
	case n.IsLeaf():
		return n.value
	default:
		return nil
	}
}

// MarshalJSON encodes the tree, keeping object member order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	switch {
	case n.IsObject():
		buf.WriteByte('{')

		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := json.Marshal(k)
			if err != nil {
				return err
			}

			buf.Write(key)
			buf.WriteByte(':')

			if err := n.fields[k].encode(buf); err != nil {
				return err
			}
		}

		buf.WriteByte('}')

	case n.IsArray():
		buf.WriteByte('[')

		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := item.encode(buf); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

	case n.IsLeaf():
		data, err := json.Marshal(n.value)
		if err != nil {
			return err
		}

		buf.Write(data)

	default:
		buf.WriteString("null")
	}

	return nil
}
