// Package engine executes a correspondence table against concrete source
// records. Execution is synchronous, bounded by the number of fields, and
// never mutates the source record; concurrent calls over shared shapes and
// tables need no coordination.
package engine

import (
	"fmt"

	"shape-mapper/check"
	"shape-mapper/diagnostic"
	"shape-mapper/mapping"
	"shape-mapper/primitive"
	"shape-mapper/shape"
)

// Mode selects the execution policy.
type Mode int

const (
	// Strict refuses to produce a destination value unless full
	// compatibility was established and every field resolves cleanly.
	Strict Mode = iota
	// BestEffort always produces a value, substituting zero values and
	// recording every substitution in the report.
	BestEffort
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case BestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// Result is the outcome of one mapping execution. Succeeded is true only if
// the report carries no error diagnostics; in strict mode a failed result
// carries a nil value, never a partially built one.
type Result struct {
	Value     shape.Record
	Report    *diagnostic.Report
	Succeeded bool
}

// Execute maps src through tbl into a new record of dstShape.
//
// Strict mode runs the checker first and returns without touching the source
// record if any error diagnostic exists; a field that fails to resolve at
// runtime aborts the whole execution. BestEffort mode reports the same
// diagnostics but always builds a value, substituting zero values where a
// field cannot be produced.
func Execute(src shape.Record, srcShape, dstShape *shape.Descriptor, tbl *mapping.Table, mode Mode) Result {
	report := check.Compatibility(srcShape, dstShape, tbl)

	if mode == Strict && report.HasErrors() {
		return Result{Report: report}
	}

	dst := make(shape.Record, dstShape.Len())

	for _, f := range dstShape.Fields() {
		c, ok := tbl.Lookup(f.Name)
		if !ok {
			if f.Required && mode == BestEffort {
				substitute(report, dst, f, "no correspondence")
			}

			continue
		}

		if aborted := produceField(report, dst, src, srcShape, f, c, mode); aborted {
			return Result{Report: report}
		}
	}

	return Result{Value: dst, Report: report, Succeeded: !report.HasErrors()}
}

// produceField resolves one destination field. The returned flag reports a
// strict-mode abort.
func produceField(
	report *diagnostic.Report,
	dst, src shape.Record,
	srcShape *shape.Descriptor,
	f shape.FieldSpec,
	c mapping.Correspondence,
	mode Mode,
) bool {
	var (
		raw     any
		present bool
	)

	if c.Source != "" {
		if !srcShape.Has(c.Source) {
			// already reported as unknown_source_field by the checker
			if f.Required {
				substitute(report, dst, f, fmt.Sprintf("source field %q unknown", c.Source))
			}

			return false
		}

		raw, present = src[c.Source]
	}

	if c.Transform != nil {
		out, err := runTransform(c.Transform, raw)
		if err != nil {
			report.AddError(diagnostic.CodeTransformFailed, c.Destination, c.Source,
				fmt.Sprintf("transform failed: %v", err))

			if mode == Strict {
				return true
			}

			substitute(report, dst, f, "transform failed")

			return false
		}

		dst[f.Name] = out

		return false
	}

	if !present {
		if !f.Required {
			return false
		}

		if mode == Strict {
			report.AddError(diagnostic.CodeMissingRuntimeValue, c.Destination, c.Source,
				fmt.Sprintf("no value for required field %q in source record, refusing substitution", c.Destination))

			return true
		}

		substitute(report, dst, f, "value absent from source record")

		return false
	}

	have := primitive.FromValue(raw)
	if !primitive.Holds(have, f.Kind.Primitive) {
		if mode == Strict {
			report.AddError(diagnostic.CodeKindMismatch, c.Destination, c.Source,
				fmt.Sprintf("runtime value of kind %s cannot be assigned to %s", have, f.Kind))

			return true
		}

		substitute(report, dst, f, fmt.Sprintf("runtime kind %s does not fit %s", have, f.Kind))

		return false
	}

	dst[f.Name] = raw

	return false
}

// substitute writes the zero value for a field and records the substitution.
func substitute(report *diagnostic.Report, dst shape.Record, f shape.FieldSpec, reason string) {
	dst[f.Name] = f.Kind.Primitive.Zero()
	report.AddError(diagnostic.CodeSubstitutedDefault, f.Name, "",
		fmt.Sprintf("substituted zero value for %q: %s", f.Name, reason))
}

// runTransform invokes a user-supplied transform, converting a panic into an
// error so best-effort execution stays total.
func runTransform(fn mapping.Transform, raw any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return fn(raw)
}
