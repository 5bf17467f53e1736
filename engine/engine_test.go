package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/diagnostic"
	"shape-mapper/engine"
	"shape-mapper/mapping"
	"shape-mapper/primitive"
	"shape-mapper/shape"
)

var (
	formShape = shape.MustBuild("StudentForm", []shape.FieldSpec{
		{Name: "id", Kind: shape.KindOf(primitive.KindInt), Required: true},
		{Name: "nombre", Kind: shape.KindOf(primitive.KindString), Required: true},
	})

	recordShape = shape.MustBuild("StudentRecord", []shape.FieldSpec{
		{Name: "idEstudiante", Kind: shape.KindOf(primitive.KindInt), Required: true},
		{Name: "nombreCompleto", Kind: shape.KindOf(primitive.KindString), Required: true},
	})

	fullTable = mapping.NewBuilder("full").
		Map("idEstudiante", "id").
		Map("nombreCompleto", "nombre").
		MustBuild()
)

func TestExecuteCleanMapping(t *testing.T) {
	t.Parallel()

	src := shape.Record{"id": 1, "nombre": "Juan"}

	for _, mode := range []engine.Mode{engine.Strict, engine.BestEffort} {
		mode := mode
		t.Run(mode.String(), func(t *testing.T) {
			t.Parallel()

			res := engine.Execute(src, formShape, recordShape, fullTable, mode)

			assert.True(t, res.Succeeded)
			assert.Equal(t, shape.Record{"idEstudiante": 1, "nombreCompleto": "Juan"}, res.Value)
			assert.Zero(t, res.Report.Len())
		})
	}
}

func TestExecuteNeverMutatesSource(t *testing.T) {
	t.Parallel()

	src := shape.Record{"id": 1, "nombre": "Juan"}

	engine.Execute(src, formShape, recordShape, fullTable, engine.BestEffort)

	assert.Equal(t, shape.Record{"id": 1, "nombre": "Juan"}, src)
}

func TestExecuteStrictRefusesIncompleteTable(t *testing.T) {
	t.Parallel()

	// nombreCompleto is required but has no correspondence.
	partial := mapping.NewBuilder("partial").
		Map("idEstudiante", "id").
		MustBuild()

	res := engine.Execute(shape.Record{"id": 1, "nombre": "Juan"}, formShape, recordShape, partial, engine.Strict)

	assert.False(t, res.Succeeded)
	assert.Nil(t, res.Value, "strict mode never returns a partially built value")
	require.True(t, res.Report.HasErrors())

	diags := res.Report.Diagnostics()
	assert.Equal(t, diagnostic.CodeMissingRequiredField, diags[0].Code)
}

func TestExecuteBestEffortSubstitutes(t *testing.T) {
	t.Parallel()

	partial := mapping.NewBuilder("partial").
		Map("idEstudiante", "id").
		MustBuild()

	res := engine.Execute(shape.Record{"id": 1, "nombre": "Juan"}, formShape, recordShape, partial, engine.BestEffort)

	assert.False(t, res.Succeeded)
	require.NotNil(t, res.Value, "best-effort always produces a value")
	assert.Equal(t, 1, res.Value["idEstudiante"])
	assert.Equal(t, "", res.Value["nombreCompleto"], "zero value substituted")

	substituted := 0
	for _, d := range res.Report.Diagnostics() {
		if d.Code == diagnostic.CodeSubstitutedDefault {
			substituted++

			assert.Equal(t, "nombreCompleto", d.DestinationField)
		}
	}

	assert.Equal(t, 1, substituted, "every substitution is traceable in the report")
}

func TestExecuteUnusedSourceStillSucceeds(t *testing.T) {
	t.Parallel()

	src := shape.MustBuild("FormWithExtra", []shape.FieldSpec{
		{Name: "id", Kind: shape.KindOf(primitive.KindInt), Required: true},
		{Name: "nombre", Kind: shape.KindOf(primitive.KindString), Required: true},
		{Name: "activo", Kind: shape.KindOf(primitive.KindBool)},
	})

	res := engine.Execute(shape.Record{"id": 1, "nombre": "Juan", "activo": true}, src, recordShape, fullTable, engine.Strict)

	assert.True(t, res.Succeeded)
	assert.Equal(t, shape.Record{"idEstudiante": 1, "nombreCompleto": "Juan"}, res.Value)

	diags := res.Report.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.CodeUnusedSourceField, diags[0].Code)
	assert.Equal(t, "activo", diags[0].SourceField)
}

func TestExecuteTransformProducesDestinationKind(t *testing.T) {
	t.Parallel()

	src := shape.MustBuild("FormWithActivo", []shape.FieldSpec{
		{Name: "id", Kind: shape.KindOf(primitive.KindInt), Required: true},
		{Name: "nombre", Kind: shape.KindOf(primitive.KindString), Required: true},
		{Name: "activo", Kind: shape.KindOf(primitive.KindBool), Required: true},
	})
	dst := shape.MustBuild("RecordWithEstado", []shape.FieldSpec{
		{Name: "idEstudiante", Kind: shape.KindOf(primitive.KindInt), Required: true},
		{Name: "nombreCompleto", Kind: shape.KindOf(primitive.KindString), Required: true},
		{Name: "estadoActivo", Kind: shape.KindOf(primitive.KindString), Required: true},
	})

	tbl := mapping.NewBuilder("estado").
		Map("idEstudiante", "id").
		Map("nombreCompleto", "nombre").
		MapTransform("estadoActivo", "activo", func(v any) (any, error) {
			if v == true {
				return "Activo", nil
			}

			return "Inactivo", nil
		}).
		MustBuild()

	res := engine.Execute(shape.Record{"id": 1, "nombre": "Juan", "activo": true}, src, dst, tbl, engine.Strict)

	require.True(t, res.Succeeded)
	assert.Equal(t, "Activo", res.Value["estadoActivo"])
}

func TestExecuteTransformFailure(t *testing.T) {
	t.Parallel()

	boom := mapping.NewBuilder("boom").
		Map("idEstudiante", "id").
		MapTransform("nombreCompleto", "nombre", func(any) (any, error) {
			return nil, errors.New("no puedo")
		}).
		MustBuild()

	src := shape.Record{"id": 1, "nombre": "Juan"}

	t.Run("strict aborts immediately", func(t *testing.T) {
		t.Parallel()

		res := engine.Execute(src, formShape, recordShape, boom, engine.Strict)

		assert.False(t, res.Succeeded)
		assert.Nil(t, res.Value)

		diags := res.Report.Diagnostics()
		require.NotEmpty(t, diags)

		last := diags[len(diags)-1]
		assert.Equal(t, diagnostic.CodeTransformFailed, last.Code)
		assert.Equal(t, "nombreCompleto", last.DestinationField)
	})

	t.Run("best effort substitutes and continues", func(t *testing.T) {
		t.Parallel()

		res := engine.Execute(src, formShape, recordShape, boom, engine.BestEffort)

		assert.False(t, res.Succeeded)
		require.NotNil(t, res.Value)
		assert.Equal(t, 1, res.Value["idEstudiante"])
		assert.Equal(t, "", res.Value["nombreCompleto"])

		var codes []diagnostic.Code
		for _, d := range res.Report.Diagnostics() {
			codes = append(codes, d.Code)
		}

		assert.Contains(t, codes, diagnostic.CodeTransformFailed)
		assert.Contains(t, codes, diagnostic.CodeSubstitutedDefault)
	})
}

func TestExecuteTransformPanicIsRecovered(t *testing.T) {
	t.Parallel()

	panicky := mapping.NewBuilder("panicky").
		Map("idEstudiante", "id").
		MapTransform("nombreCompleto", "nombre", func(any) (any, error) {
			panic("sorpresa")
		}).
		MustBuild()

	assert.NotPanics(t, func() {
		res := engine.Execute(shape.Record{"id": 1, "nombre": "Juan"}, formShape, recordShape, panicky, engine.BestEffort)

		assert.False(t, res.Succeeded)
		require.NotNil(t, res.Value)
		require.NotNil(t, res.Report)
	})
}

func TestExecuteRuntimeKindViolation(t *testing.T) {
	t.Parallel()

	// The shapes agree statically; the concrete record lies about id.
	src := shape.Record{"id": "uno", "nombre": "Juan"}

	t.Run("strict aborts", func(t *testing.T) {
		t.Parallel()

		res := engine.Execute(src, formShape, recordShape, fullTable, engine.Strict)

		assert.False(t, res.Succeeded)
		assert.Nil(t, res.Value)

		diags := res.Report.Diagnostics()
		require.NotEmpty(t, diags)
		assert.Equal(t, diagnostic.CodeKindMismatch, diags[len(diags)-1].Code)
	})

	t.Run("best effort substitutes", func(t *testing.T) {
		t.Parallel()

		res := engine.Execute(src, formShape, recordShape, fullTable, engine.BestEffort)

		assert.False(t, res.Succeeded)
		assert.Equal(t, 0, res.Value["idEstudiante"])
		assert.Equal(t, "Juan", res.Value["nombreCompleto"])
	})
}

func TestExecuteMissingRuntimeValue(t *testing.T) {
	t.Parallel()

	src := shape.Record{"id": 1} // nombre declared but absent

	t.Run("strict refuses substitution", func(t *testing.T) {
		t.Parallel()

		res := engine.Execute(src, formShape, recordShape, fullTable, engine.Strict)

		assert.False(t, res.Succeeded)
		assert.Nil(t, res.Value)

		var codes []diagnostic.Code
		for _, d := range res.Report.Diagnostics() {
			codes = append(codes, d.Code)
		}

		assert.Contains(t, codes, diagnostic.CodeMissingRuntimeValue)
		assert.NotContains(t, codes, diagnostic.CodeSubstitutedDefault,
			"only actual substitutions count as substituted_default")
	})

	t.Run("best effort substitutes", func(t *testing.T) {
		t.Parallel()

		res := engine.Execute(src, formShape, recordShape, fullTable, engine.BestEffort)

		assert.False(t, res.Succeeded)
		assert.Equal(t, "", res.Value["nombreCompleto"])
	})
}

func TestExecuteRefusesLossyNumericMapping(t *testing.T) {
	t.Parallel()

	// int64 exceeds float64's 53-bit mantissa, so this pair must demand an
	// explicit transform instead of coercing.
	src := shape.MustBuild("Counter", []shape.FieldSpec{
		{Name: "n", Kind: shape.KindOf(primitive.KindInt64), Required: true},
	})
	dst := shape.MustBuild("Measure", []shape.FieldSpec{
		{Name: "n", Kind: shape.KindOf(primitive.KindFloat64), Required: true},
	})

	tbl := mapping.NewBuilder("lossy").Map("n", "n").MustBuild()

	res := engine.Execute(shape.Record{"n": int64(1<<53 + 1)}, src, dst, tbl, engine.Strict)

	assert.False(t, res.Succeeded)
	assert.Nil(t, res.Value)
	require.True(t, res.Report.HasErrors())

	diags := res.Report.Diagnostics()
	assert.Equal(t, diagnostic.CodeKindMismatch, diags[0].Code)
}

func TestExecuteWideningKeepsValue(t *testing.T) {
	t.Parallel()

	wide := shape.MustBuild("Wide", []shape.FieldSpec{
		{Name: "idEstudiante", Kind: shape.KindOf(primitive.KindInt64), Required: true},
		{Name: "nombreCompleto", Kind: shape.KindOf(primitive.KindString), Required: true},
	})

	res := engine.Execute(shape.Record{"id": 1, "nombre": "Juan"}, formShape, wide, fullTable, engine.Strict)

	assert.True(t, res.Succeeded, "warnings do not block strict execution")
	assert.Equal(t, 1, res.Value["idEstudiante"])
	assert.Equal(t, 1, res.Report.Count(diagnostic.SeverityWarning))
}

func TestExecuteBatch(t *testing.T) {
	t.Parallel()

	records := []shape.Record{
		{"id": 1, "nombre": "Juan"},
		{"id": 2}, // nombre absent
		{"id": 3, "nombre": "Ana"},
	}

	results, reporter := engine.ExecuteBatch(records, formShape, recordShape, fullTable, engine.BestEffort)

	require.Len(t, results, 3)
	assert.True(t, results[0].Succeeded)
	assert.False(t, results[1].Succeeded)
	assert.True(t, results[2].Succeeded)

	assert.True(t, reporter.HasBlockingIssues())
	assert.Equal(t, 1, reporter.CountBySeverity(diagnostic.SeverityError))
	assert.Equal(t, 1, reporter.CountByCode()[diagnostic.CodeSubstitutedDefault])
}

func TestModeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "strict", engine.Strict.String())
	assert.Equal(t, "best_effort", engine.BestEffort.String())
	assert.Equal(t, "unknown", engine.Mode(99).String())
}
