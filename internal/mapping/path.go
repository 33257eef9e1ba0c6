package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxIndex bounds array indices in field paths.
const MaxIndex = 999

// PathSegment is one step of a field path: an object key or an array index.
type PathSegment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a segment selecting an object member.
func Key(name string) PathSegment {
	return PathSegment{key: name}
}

// Index returns a segment selecting an array element.
func Index(i int) PathSegment {
	return PathSegment{index: i, isIndex: true}
}

// IsIndex returns true for array index segments.
func (s PathSegment) IsIndex() bool {
	return s.isIndex
}

// Name returns the key of a key segment.
func (s PathSegment) Name() string {
	return s.key
}

// Pos returns the index of an index segment.
func (s PathSegment) Pos() int {
	return s.index
}

// String renders the segment as it appears in a dotted path.
func (s PathSegment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}

	return s.key
}

// FieldPath is a parsed dotted field path.
type FieldPath struct {
	Segments []PathSegment
}

// String returns the dotted form of the path.
func (p FieldPath) String() string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = s.String()
	}

	return strings.Join(parts, ".")
}

// Root returns the first key of the path.
func (p FieldPath) Root() string {
	if len(p.Segments) == 0 {
		return ""
	}

	return p.Segments[0].Name()
}

// ParsePath parses a dotted field path such as "load.route.0.address.city".
// All-digit segments are array indices; other segments must be identifiers.
// The first segment must be a key.
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	parts := strings.Split(path, ".")
	segments := make([]PathSegment, 0, len(parts))

	for i, part := range parts {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		if isDigits(part) {
			if i == 0 {
				return FieldPath{}, fmt.Errorf("invalid path %q: must start with a key", path)
			}

			n, err := strconv.Atoi(part)
			if err != nil || n > MaxIndex {
				return FieldPath{}, fmt.Errorf("invalid path %q: index %s out of range", path, part)
			}

			segments = append(segments, Index(n))

			continue
		}

		if !isValidIdent(part) {
			return FieldPath{}, fmt.Errorf("invalid path %q: invalid key %q", path, part)
		}

		segments = append(segments, Key(part))
	}

	return FieldPath{Segments: segments}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}

	return s != ""
}

// isValidIdent checks for a letter or underscore followed by letters, digits or underscores.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return false
			}
		} else if !isLetter(r) && !isDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
