package shape

import (
	"errors"
	"fmt"
	"reflect"
)

// Record is the dynamic value representation a mapping operates on. Source
// records are never mutated by the engine; destination records are built
// field by field.
type Record map[string]any

// ErrNotStruct is returned when a struct was expected.
var ErrNotStruct = errors.New("value is not a struct")

// RecordOf converts a struct (or pointer to struct) into a Record using the
// same field rules as FromStruct: unexported fields are skipped, the
// shape:"..." tag renames or omits, nil pointer fields are absent, and nested
// structs become nested records.
func RecordOf(v any) (Record, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("record of %T: nil pointer", v)
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record of %T: %w", v, ErrNotStruct)
	}

	return recordOfStruct(rv)
}

func recordOfStruct(rv reflect.Value) (Record, error) {
	rt := rv.Type()
	rec := make(Record, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)

		name, skip := fieldName(sf)
		if skip {
			continue
		}

		fv := rv.Field(i)
		if sf.Type.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}

			fv = fv.Elem()
		}

		if fv.Kind() == reflect.Struct && !isLeafStruct(fv.Type()) {
			nested, err := recordOfStruct(fv)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}

			rec[name] = nested

			continue
		}

		rec[name] = fv.Interface()
	}

	return rec, nil
}

// AssignTo writes the record into a struct pointed to by dst, matching fields
// by name (honoring the shape:"..." tag). Record entries without a matching
// struct field are ignored; assignable and convertible values are set,
// anything else is an error.
func (r Record) AssignTo(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("assign to %T: destination must be a non-nil pointer", dst)
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("assign to %T: %w", dst, ErrNotStruct)
	}

	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)

		name, skip := fieldName(sf)
		if skip || !sf.IsExported() {
			continue
		}

		raw, ok := r[name]
		if !ok || raw == nil {
			continue
		}

		if nested, ok := AsRecord(raw); ok {
			target := rv.Field(i)
			if target.Kind() == reflect.Pointer {
				if target.IsNil() {
					target.Set(reflect.New(target.Type().Elem()))
				}

				target = target.Elem()
			}

			if target.Kind() == reflect.Struct {
				if err := nested.AssignTo(target.Addr().Interface()); err != nil {
					return fmt.Errorf("field %q: %w", name, err)
				}

				continue
			}
		}

		if err := assignValue(rv.Field(i), raw, name); err != nil {
			return err
		}
	}

	return nil
}

// AsRecord unwraps a value into a Record, accepting both Record and plain
// string-keyed maps.
func AsRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	default:
		return nil, false
	}
}

func assignValue(target reflect.Value, raw any, name string) error {
	val := reflect.ValueOf(raw)

	if target.Kind() == reflect.Pointer {
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}

		target = target.Elem()
	}

	switch {
	case val.Type().AssignableTo(target.Type()):
		target.Set(val)
	case val.Type().ConvertibleTo(target.Type()):
		target.Set(val.Convert(target.Type()))
	default:
		return fmt.Errorf("field %q: cannot assign %s to %s", name, val.Type(), target.Type())
	}

	return nil
}
