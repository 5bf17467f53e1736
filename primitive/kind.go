package primitive

import (
	"reflect"
	"time"
)

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt64
	KindUint
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration
	KindShape // field holds a nested shape, compared structurally by the checker

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

func (k KindEnum) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindInt64:
		return "int64"
	case KindUint:
		return "uint"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindDuration:
		return "duration"
	case KindShape:
		return "shape"
	default:
		return "invalid"
	}
}

// ParseKind resolves a kind name used in YAML definitions.
// Returns the zero (invalid) KindEnum for unknown names.
func ParseKind(name string) KindEnum {
	switch name {
	case "int", "number":
		return KindInt
	case "int64":
		return KindInt64
	case "uint":
		return KindUint
	case "uint64":
		return KindUint64
	case "float32":
		return KindFloat32
	case "float64", "float":
		return KindFloat64
	case "bool", "boolean":
		return KindBool
	case "string":
		return KindString
	case "time", "datetime":
		return KindTime
	case "duration":
		return KindDuration
	case "shape":
		return KindShape
	default:
		return 0
	}
}

func (k KindEnum) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt64, KindUint, KindUint64, KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt64, KindUint, KindUint64:
		return true
	}
}

func (k KindEnum) IsFloat() bool {
	switch k {
	default:
		return false
	case KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsSigned() bool {
	return k == KindInt || k == KindInt64
}

func (k KindEnum) IsUnsigned() bool {
	return k == KindUint || k == KindUint64
}

// Zero returns the substitution value for a kind, used by best-effort mapping
// when a field cannot be produced from the source.
func (k KindEnum) Zero() any {
	switch k {
	case KindInt:
		return int(0)
	case KindInt64:
		return int64(0)
	case KindUint:
		return uint(0)
	case KindUint64:
		return uint64(0)
	case KindFloat32:
		return float32(0)
	case KindFloat64:
		return float64(0)
	case KindBool:
		return false
	case KindString:
		return ""
	case KindTime:
		return time.Time{}
	case KindDuration:
		return time.Duration(0)
	default:
		return nil
	}
}

func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	// check if true primitive type
	switch rtype {
	case reflect.TypeOf(int(0)):
		return KindInt
	case reflect.TypeOf(int64(0)):
		return KindInt64
	case reflect.TypeOf(uint(0)):
		return KindUint
	case reflect.TypeOf(uint64(0)):
		return KindUint64
	case reflect.TypeOf(float32(0)):
		return KindFloat32
	case reflect.TypeOf(float64(0)):
		return KindFloat64
	case reflect.TypeOf(false):
		return KindBool
	case reflect.TypeOf(""):
		return KindString
	case reflect.TypeOf(time.Time{}):
		return KindTime
	case reflect.TypeOf(time.Duration(0)):
		return KindDuration
	}

	// named types fall back to their underlying reflect kind
	switch rtype.Kind() {
	default:
		return 0
	case reflect.Int:
		return KindInt
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint64:
		return KindUint64
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	case reflect.Struct:
		return KindShape
	}
}

// FromValue reports the kind of a concrete runtime value.
// String-keyed maps (nested records) report KindShape; nil reports the
// invalid kind.
func FromValue(v any) KindEnum {
	if v == nil {
		return 0
	}

	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Map && rt.Key().Kind() == reflect.String {
		return KindShape
	}

	return FromReflectType(rt)
}
