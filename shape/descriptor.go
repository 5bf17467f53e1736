// Package shape provides declarative descriptions of structural types:
// ordered field specs with primitive kinds, nested shape references, and
// required-ness. Descriptors are built once, validated at build time, and
// read-only afterwards, so concurrent use needs no coordination.
package shape

import (
	"errors"
	"fmt"

	"shape-mapper/primitive"
)

var (
	// ErrDuplicateField is returned by Build when two fields share a name.
	ErrDuplicateField = errors.New("duplicate field")
	// ErrCyclicShape is returned by Build when nested shape references
	// form a cycle or exceed the nesting bound.
	ErrCyclicShape = errors.New("cyclic or over-deep shape reference")
	// ErrInvalidKind is returned by Build for a field without a usable kind.
	ErrInvalidKind = errors.New("invalid field kind")
)

// MaxNestingDepth bounds how deep shape references may nest.
const MaxNestingDepth = 32

// Kind describes what a field holds: a primitive kind, or a reference to a
// nested shape (Primitive == KindShape with a non-nil Ref).
type Kind struct {
	Primitive primitive.KindEnum
	Ref       *Descriptor
}

// KindOf wraps a primitive kind.
func KindOf(k primitive.KindEnum) Kind {
	return Kind{Primitive: k}
}

// RefOf wraps a nested shape reference.
func RefOf(d *Descriptor) Kind {
	return Kind{Primitive: primitive.KindShape, Ref: d}
}

// IsShape reports whether the kind is a nested shape reference.
func (k Kind) IsShape() bool {
	return k.Primitive == primitive.KindShape
}

func (k Kind) String() string {
	if k.IsShape() && k.Ref != nil {
		return "shape(" + k.Ref.Name() + ")"
	}

	return k.Primitive.String()
}

// FieldSpec describes one field of a shape. Immutable once the descriptor
// owning it is built.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool
}

// Descriptor is an ordered set of field specs, unique by name, representing
// one structural type. Never mutated after Build.
type Descriptor struct {
	name   string
	fields []FieldSpec
	byName map[string]int
}

// Build constructs a descriptor from an ordered field list.
// Fails with ErrDuplicateField on repeated names, ErrInvalidKind on fields
// without a valid kind, and ErrCyclicShape when nested references cycle.
func Build(name string, fields []FieldSpec) (*Descriptor, error) {
	d := &Descriptor{
		name:   name,
		fields: append([]FieldSpec(nil), fields...),
		byName: make(map[string]int, len(fields)),
	}

	for i, f := range d.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("shape %q field %d: %w: empty name", name, i, ErrInvalidKind)
		}

		if _, ok := d.byName[f.Name]; ok {
			return nil, fmt.Errorf("shape %q: %w: %q", name, ErrDuplicateField, f.Name)
		}

		if !f.Kind.Primitive.IsValid() {
			return nil, fmt.Errorf("shape %q field %q: %w", name, f.Name, ErrInvalidKind)
		}

		if f.Kind.IsShape() && f.Kind.Ref == nil {
			return nil, fmt.Errorf("shape %q field %q: %w: shape kind without reference", name, f.Name, ErrInvalidKind)
		}

		d.byName[f.Name] = i
	}

	if err := d.checkNesting(map[*Descriptor]struct{}{}, 0); err != nil {
		return nil, fmt.Errorf("shape %q: %w", name, err)
	}

	return d, nil
}

// MustBuild is Build that panics on error, for descriptors declared in
// initialization code.
func MustBuild(name string, fields []FieldSpec) *Descriptor {
	d, err := Build(name, fields)
	if err != nil {
		panic(err)
	}

	return d
}

// checkNesting walks nested references rejecting cycles and unbounded depth.
// Referenced descriptors were validated by their own Build; only the
// reference structure is walked here.
func (d *Descriptor) checkNesting(onPath map[*Descriptor]struct{}, depth int) error {
	if depth > MaxNestingDepth {
		return ErrCyclicShape
	}

	if _, ok := onPath[d]; ok {
		return fmt.Errorf("%w: via %q", ErrCyclicShape, d.name)
	}

	onPath[d] = struct{}{}
	defer delete(onPath, d)

	for _, f := range d.fields {
		if !f.Kind.IsShape() || f.Kind.Ref == nil {
			continue
		}

		if err := f.Kind.Ref.checkNesting(onPath, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// Name returns the shape name.
func (d *Descriptor) Name() string {
	return d.name
}

// Len returns the number of fields.
func (d *Descriptor) Len() int {
	return len(d.fields)
}

// Lookup returns the field spec with the given name.
func (d *Descriptor) Lookup(name string) (FieldSpec, bool) {
	i, ok := d.byName[name]
	if !ok {
		return FieldSpec{}, false
	}

	return d.fields[i], true
}

// Has reports whether a field with the given name exists.
func (d *Descriptor) Has(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// Fields returns a copy of the field specs in declaration order.
func (d *Descriptor) Fields() []FieldSpec {
	return append([]FieldSpec(nil), d.fields...)
}
