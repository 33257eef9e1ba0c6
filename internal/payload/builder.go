package payload

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"load-mapper/internal/diagnostic"
	"load-mapper/internal/format"
	"load-mapper/internal/mapping"
	"load-mapper/internal/schema"
	"load-mapper/internal/table"
)

// Top-level objects every payload carries.
const (
	KeyLoad      = "load"
	KeyCustomer  = "customer"
	KeyBrokerage = "brokerage"
)

var requiredTopLevel = []string{KeyLoad, KeyCustomer, KeyBrokerage}

// Fallback records a value the builder fabricated for a row.
type Fallback struct {
	Path   string `json:"path"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
}

// Payload is the nested body built from one row.
type Payload struct {
	// Row is the 1-based position of the source row.
	Row       int        `json:"row"`
	Body      *Node      `json:"body"`
	Fallbacks []Fallback `json:"fallbacks,omitempty"`
}

// StructuralError reports a field path that disagrees with the shape
// already built for the row, such as an index under an object.
type StructuralError struct {
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("cannot write %s: %s", e.Path, e.Reason)
}

// Builder converts field-keyed rows into payload trees. It is safe for
// concurrent use.
type Builder struct {
	formatter *format.Formatter
	logger    *zap.Logger
}

// NewBuilder creates a new Builder. A nil logger disables logging.
func NewBuilder(reg *schema.Registry, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Builder{
		formatter: format.NewFormatter(reg),
		logger:    logger,
	}
}

// Build returns one payload per row of t, in row order.
func (b *Builder) Build(t *table.Table) []Payload {
	payloads, _ := b.BuildWithDiagnostics(t)
	return payloads
}

// BuildWithDiagnostics is Build that also returns the structural conflicts
// met while writing fields.
func (b *Builder) BuildWithDiagnostics(t *table.Table) ([]Payload, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}
	payloads := make([]Payload, 0, t.Len())

	for i, row := range t.Rows {
		payloads = append(payloads, b.BuildRow(row, i+1, diags))
	}

	return payloads, diags
}

// BuildRow builds the payload of one row. rowNum is only used for
// reporting.
func (b *Builder) BuildRow(row *table.Row, rowNum int, diags *diagnostic.Diagnostics) Payload {
	root := NewObject()

	for _, path := range row.Keys() {
		raw := row.Value(path)
		if table.IsBlank(raw) {
			continue
		}

		fp, err := mapping.ParsePath(path)
		if err != nil {
			diags.AddWarning(diagnostic.CodeInvalidPath, err.Error(), rowNum, path)
			continue
		}

		if err := write(root, fp, NewLeaf(b.formatter.Format(path, raw))); err != nil {
			b.logger.Warn("structural conflict",
				zap.Int("row", rowNum),
				zap.String("field", path),
				zap.Error(err))
			diags.AddWarning(diagnostic.CodeStructuralConflict, err.Error(), rowNum, path)
		}
	}

	fx := &fixer{}
	fx.apply(root)

	if b.logger.Core().Enabled(zap.DebugLevel) {
		b.logger.Debug("payload built",
			zap.Int("row", rowNum),
			zap.Int("fallbacks", len(fx.fallbacks)),
			zap.String("tree", spew.Sdump(root.Interface())))
	}

	return Payload{Row: rowNum, Body: root, Fallbacks: fx.fallbacks}
}

// write places leaf at fp under root, creating intermediate objects and
// arrays. A key followed by an index creates an array.
func write(root *Node, fp mapping.FieldPath, leaf *Node) error {
	segs := fp.Segments
	cur := root

	for i, seg := range segs {
		last := i == len(segs)-1

		var next *Node
		if !last {
			next = containerFor(segs[i+1])
		}

		if seg.IsIndex() {
			if !cur.IsArray() {
				return &StructuralError{Path: fp.String(), Reason: fmt.Sprintf("index %d under %s node", seg.Pos(), cur.Kind())}
			}

			if last {
				if child := cur.At(seg.Pos()); child != nil && !child.IsLeaf() {
					return &StructuralError{Path: fp.String(), Reason: "value would replace a container"}
				}

				cur.SetAt(seg.Pos(), leaf)

				return nil
			}

			child := cur.At(seg.Pos())
			if child == nil {
				child = next
				cur.SetAt(seg.Pos(), child)
			}

			cur = child

			continue
		}

		if !cur.IsObject() {
			return &StructuralError{Path: fp.String(), Reason: fmt.Sprintf("key %q under %s node", seg.Name(), cur.Kind())}
		}

		if last {
			if child, ok := cur.Get(seg.Name()); ok && !child.IsLeaf() {
				return &StructuralError{Path: fp.String(), Reason: "value would replace a container"}
			}

			cur.Set(seg.Name(), leaf)

			return nil
		}

		child, ok := cur.Get(seg.Name())
		if !ok {
			child = next
			cur.Set(seg.Name(), child)
		}

		cur = child
	}

	return nil
}

func containerFor(seg mapping.PathSegment) *Node {
	if seg.IsIndex() {
		return NewArray()
	}

	return NewObject()
}
