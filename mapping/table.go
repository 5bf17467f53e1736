package mapping

import (
	"errors"
	"fmt"
)

// ErrDuplicateDestination is returned by Build when two correspondences
// target the same destination field.
var ErrDuplicateDestination = errors.New("duplicate destination field")

// Transform converts a resolved source value into a destination value.
// For constant and computed correspondences the input is nil.
type Transform func(src any) (any, error)

// Correspondence is a single declared rule producing one destination field.
// An empty Source means the field is supplied purely by Transform.
type Correspondence struct {
	Destination string
	Source      string
	Transform   Transform
}

// Table is an ordered set of correspondences keyed by destination field.
// Immutable after Build.
type Table struct {
	name    string
	entries []Correspondence
	byDest  map[string]int
}

// Builder accumulates correspondences for one table.
type Builder struct {
	name    string
	entries []Correspondence
}

// NewBuilder creates a builder for a named table.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Map declares a plain destination <- source correspondence.
func (b *Builder) Map(dstField, srcField string) *Builder {
	b.entries = append(b.entries, Correspondence{Destination: dstField, Source: srcField})
	return b
}

// MapTransform declares a destination <- transform(source) correspondence.
// The transform author owns kind compatibility; the checker skips kind
// analysis for transformed fields.
func (b *Builder) MapTransform(dstField, srcField string, fn Transform) *Builder {
	b.entries = append(b.entries, Correspondence{Destination: dstField, Source: srcField, Transform: fn})
	return b
}

// MapConstant declares a destination field supplied by a fixed value,
// independent of any source field.
func (b *Builder) MapConstant(dstField string, value any) *Builder {
	return b.MapComputed(dstField, func(any) (any, error) { return value, nil })
}

// MapComputed declares a destination field supplied entirely by fn, with no
// source dependency.
func (b *Builder) MapComputed(dstField string, fn Transform) *Builder {
	b.entries = append(b.entries, Correspondence{Destination: dstField, Transform: fn})
	return b
}

// Build returns the immutable table, failing with ErrDuplicateDestination on
// repeated destination fields. Insertion order is preserved; it determines
// diagnostic emission order for correspondences outside the destination shape.
func (b *Builder) Build() (*Table, error) {
	t := &Table{
		name:    b.name,
		entries: append([]Correspondence(nil), b.entries...),
		byDest:  make(map[string]int, len(b.entries)),
	}

	for i, c := range t.entries {
		if c.Destination == "" {
			return nil, fmt.Errorf("table %q entry %d: empty destination field", b.name, i)
		}

		if _, ok := t.byDest[c.Destination]; ok {
			return nil, fmt.Errorf("table %q: %w: %q", b.name, ErrDuplicateDestination, c.Destination)
		}

		t.byDest[c.Destination] = i
	}

	return t, nil
}

// MustBuild is Build that panics on error, for tables declared in
// initialization code.
func (b *Builder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}

	return t
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Len returns the number of correspondences.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the correspondence producing the given destination field.
func (t *Table) Lookup(dstField string) (Correspondence, bool) {
	i, ok := t.byDest[dstField]
	if !ok {
		return Correspondence{}, false
	}

	return t.entries[i], true
}

// Correspondences returns a copy of the entries in declaration order.
func (t *Table) Correspondences() []Correspondence {
	return append([]Correspondence(nil), t.entries...)
}

// SourceFields returns the set of source fields referenced by any
// correspondence.
func (t *Table) SourceFields() map[string]struct{} {
	used := make(map[string]struct{}, len(t.entries))
	for _, c := range t.entries {
		if c.Source != "" {
			used[c.Source] = struct{}{}
		}
	}

	return used
}
