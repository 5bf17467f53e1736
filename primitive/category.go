package primitive

// Coercion is the result of comparing a source kind against a destination kind
// when no transform mediates between them.
type Coercion int

const (
	// CoercionNone means the kinds are incompatible without a transform.
	CoercionNone Coercion = iota
	// CoercionWidening means the destination can hold every source value,
	// but the representation changes (e.g. int -> int64).
	CoercionWidening
	// CoercionIdentical means the kinds are exactly the same.
	CoercionIdentical
)

func (c Coercion) String() string {
	switch c {
	case CoercionIdentical:
		return "identical"
	case CoercionWidening:
		return "widening"
	default:
		return "none"
	}
}

type ConversionPair struct {
	From, To KindEnum
}

var wideningPairs map[ConversionPair]struct{}

func init() {
	// only provably lossless pairs widen: int and uint can be any wide from
	// 32 upto 64, so int -> float64 and uint -> int64 may already lose, and
	// the 64-bit integer kinds exceed float64's 53-bit mantissa. Everything
	// else needs an explicit transform.
	wideningPairs = map[ConversionPair]struct{}{
		{KindInt, KindInt64}:       {},
		{KindUint, KindUint64}:     {},
		{KindFloat32, KindFloat64}: {},
	}
}

// Classify reports how a source kind relates to a destination kind.
// Two shape kinds classify as identical at the kind level only; the checker
// compares nested shapes structurally, field by field.
func Classify(from, to KindEnum) Coercion {
	if !from.IsValid() || !to.IsValid() {
		return CoercionNone
	}

	if from == to {
		return CoercionIdentical
	}

	if _, ok := wideningPairs[ConversionPair{from, to}]; ok {
		return CoercionWidening
	}

	return CoercionNone
}

// Holds reports whether a runtime value of kind `have` satisfies a declared
// destination kind `want`, i.e. identical or a lossless widening.
func Holds(have, want KindEnum) bool {
	return Classify(have, want) != CoercionNone
}
