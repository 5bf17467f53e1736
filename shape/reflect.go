package shape

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"shape-mapper/primitive"
)

// descriptorCache caches reflection-derived descriptors per reflect.Type.
// Descriptors are immutable, so a cached entry is shared freely.
var descriptorCache sync.Map // reflect.Type -> *Descriptor

// FromStruct derives a descriptor from a struct type (value or pointer).
// Field rules:
//   - unexported fields are skipped
//   - the shape:"name" tag renames a field, shape:"-" omits it
//   - pointer fields are optional, value fields required
//   - nested structs (and pointers to them) become nested shape references
//
// Results are cached process-wide by reflect.Type.
func FromStruct(v any) (*Descriptor, error) {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("from struct %T: %w", v, ErrNotStruct)
	}

	return fromStructType(rt, map[reflect.Type]struct{}{})
}

// MustFromStruct is FromStruct that panics on error.
func MustFromStruct(v any) *Descriptor {
	d, err := FromStruct(v)
	if err != nil {
		panic(err)
	}

	return d
}

func fromStructType(rt reflect.Type, onPath map[reflect.Type]struct{}) (*Descriptor, error) {
	if cached, ok := descriptorCache.Load(rt); ok {
		return cached.(*Descriptor), nil
	}

	if _, ok := onPath[rt]; ok {
		return nil, fmt.Errorf("%w: via %s", ErrCyclicShape, rt)
	}

	onPath[rt] = struct{}{}
	defer delete(onPath, rt)

	fields := make([]FieldSpec, 0, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		name, skip := fieldName(sf)
		if skip {
			continue
		}

		ft := sf.Type
		required := true

		if ft.Kind() == reflect.Pointer {
			required = false
			ft = ft.Elem()
		}

		kind, err := kindOfType(ft, onPath)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}

		fields = append(fields, FieldSpec{Name: name, Kind: kind, Required: required})
	}

	d, err := Build(rt.Name(), fields)
	if err != nil {
		return nil, err
	}

	actual, _ := descriptorCache.LoadOrStore(rt, d)

	return actual.(*Descriptor), nil
}

func kindOfType(ft reflect.Type, onPath map[reflect.Type]struct{}) (Kind, error) {
	prim := primitive.FromReflectType(ft)
	if prim != primitive.KindShape {
		if !prim.IsValid() {
			return Kind{}, fmt.Errorf("%w: unsupported type %s", ErrInvalidKind, ft)
		}

		return KindOf(prim), nil
	}

	nested, err := fromStructType(ft, onPath)
	if err != nil {
		return Kind{}, err
	}

	return RefOf(nested), nil
}

// isLeafStruct reports whether a struct type maps to a primitive kind
// (time.Time and friends) rather than a nested shape.
func isLeafStruct(rt reflect.Type) bool {
	return primitive.FromReflectType(rt) != primitive.KindShape
}

// fieldName resolves the record/shape name of a struct field from the
// shape:"..." tag, falling back to the Go field name. The second return
// reports whether the field is omitted.
func fieldName(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() {
		return "", true
	}

	tag, ok := sf.Tag.Lookup("shape")
	if !ok {
		return sf.Name, false
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return "", true
	}

	if name == "" {
		return sf.Name, false
	}

	return name, false
}
