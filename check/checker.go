// Package check validates a correspondence table against a source and a
// destination shape, without running any transform. Checking is pure and
// idempotent: identical inputs always produce identical reports, in a
// deterministic order suitable for golden-file comparison.
package check

import (
	"fmt"

	"shape-mapper/diagnostic"
	"shape-mapper/mapping"
	"shape-mapper/primitive"
	"shape-mapper/shape"
)

// Compatibility determines whether executing tbl against a value of src can
// produce a valid value of dst.
//
// Emission order: destination fields in declaration order, then
// correspondences targeting unknown destination fields in table order, then
// unused source fields in source declaration order.
func Compatibility(src, dst *shape.Descriptor, tbl *mapping.Table) *diagnostic.Report {
	res := &diagnostic.Report{}

	for _, f := range dst.Fields() {
		c, ok := tbl.Lookup(f.Name)
		if !ok {
			if f.Required {
				res.AddError(diagnostic.CodeMissingRequiredField, f.Name, "",
					fmt.Sprintf("required field %q has no correspondence", f.Name))
			}

			continue
		}

		checkCorrespondence(res, src, f, c)
	}

	for _, c := range tbl.Correspondences() {
		if !dst.Has(c.Destination) {
			res.AddError(diagnostic.CodeUnknownDestinationField, c.Destination, c.Source,
				fmt.Sprintf("destination field %q not present in shape %q", c.Destination, dst.Name()))
		}
	}

	used := tbl.SourceFields()

	for _, f := range src.Fields() {
		if _, ok := used[f.Name]; !ok {
			res.AddInfo(diagnostic.CodeUnusedSourceField, "", f.Name,
				fmt.Sprintf("source field %q is not referenced by any correspondence", f.Name))
		}
	}

	return res
}

func checkCorrespondence(res *diagnostic.Report, src *shape.Descriptor, dstField shape.FieldSpec, c mapping.Correspondence) {
	// constant or computed field: only the transform can supply it
	if c.Source == "" {
		if c.Transform == nil {
			res.AddError(diagnostic.CodeMissingTransform, c.Destination, "",
				fmt.Sprintf("field %q has neither source nor transform", c.Destination))
		}

		return
	}

	srcField, ok := src.Lookup(c.Source)
	if !ok {
		res.AddError(diagnostic.CodeUnknownSourceField, c.Destination, c.Source,
			fmt.Sprintf("source field %q not present in shape %q", c.Source, src.Name()))

		return
	}

	// kind compatibility is the transform author's responsibility
	if c.Transform != nil {
		return
	}

	checkKinds(res, c.Destination, c.Source, srcField.Kind, dstField.Kind)
}

// checkKinds compares a source kind against a destination kind, recursing
// into nested shape references. Field names are dotted paths below the
// top-level correspondence.
func checkKinds(res *diagnostic.Report, dstPath, srcPath string, from, to shape.Kind) {
	if from.IsShape() && to.IsShape() {
		checkNestedShapes(res, dstPath, srcPath, from.Ref, to.Ref)
		return
	}

	switch primitive.Classify(from.Primitive, to.Primitive) {
	case primitive.CoercionIdentical:
	case primitive.CoercionWidening:
		res.AddWarning(diagnostic.CodeImplicitCoercion, dstPath, srcPath,
			fmt.Sprintf("implicit coercion from %s to %s", from, to))
	default:
		res.AddError(diagnostic.CodeKindMismatch, dstPath, srcPath,
			fmt.Sprintf("cannot assign %s to %s without a transform", from, to))
	}
}

// checkNestedShapes compares two nested shapes structurally: every required
// destination field must exist in the source shape with a compatible kind.
// Recursion is bounded because shape.Build rejects cyclic references.
func checkNestedShapes(res *diagnostic.Report, dstPath, srcPath string, from, to *shape.Descriptor) {
	for _, f := range to.Fields() {
		nestedDst := dstPath + "." + f.Name

		sf, ok := from.Lookup(f.Name)
		if !ok {
			if f.Required {
				res.AddError(diagnostic.CodeKindMismatch, nestedDst, srcPath,
					fmt.Sprintf("nested shape %q lacks required field %q", from.Name(), f.Name))
			}

			continue
		}

		checkKinds(res, nestedDst, srcPath+"."+f.Name, sf.Kind, f.Kind)
	}
}
