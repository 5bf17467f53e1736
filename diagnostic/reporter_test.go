package diagnostic_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/diagnostic"
)

func sampleReports() (*diagnostic.Report, *diagnostic.Report) {
	clean := &diagnostic.Report{}
	clean.AddInfo(diagnostic.CodeUnusedSourceField, "", "activo", "unused")

	broken := &diagnostic.Report{}
	broken.AddWarning(diagnostic.CodeImplicitCoercion, "idEstudiante", "id", "int to int64")
	broken.AddError(diagnostic.CodeSubstitutedDefault, "nombreCompleto", "", "substituted")
	broken.AddError(diagnostic.CodeTransformFailed, "estadoActivo", "activo", "boom")

	return clean, broken
}

func TestReporterCounts(t *testing.T) {
	t.Parallel()

	clean, broken := sampleReports()

	agg := diagnostic.NewReporter()
	assert.False(t, agg.HasBlockingIssues())

	agg.Collect(clean, nil, broken)

	assert.Len(t, agg.Reports(), 2, "nil reports are ignored")
	assert.True(t, agg.HasBlockingIssues())
	assert.Equal(t, 2, agg.CountBySeverity(diagnostic.SeverityError))
	assert.Equal(t, 1, agg.CountBySeverity(diagnostic.SeverityWarning))
	assert.Equal(t, 1, agg.CountBySeverity(diagnostic.SeverityInfo))

	byCode := agg.CountByCode()
	assert.Equal(t, 1, byCode[diagnostic.CodeSubstitutedDefault])
	assert.Equal(t, 1, byCode[diagnostic.CodeTransformFailed])
	assert.Equal(t, 1, byCode[diagnostic.CodeImplicitCoercion])
}

func TestReporterDoesNotAlterReports(t *testing.T) {
	t.Parallel()

	clean, _ := sampleReports()
	before := clean.Diagnostics()

	agg := diagnostic.NewReporter()
	agg.Collect(clean)
	agg.Summarize()

	assert.Equal(t, before, clean.Diagnostics())
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	clean, broken := sampleReports()

	agg := diagnostic.NewReporter()
	agg.Collect(clean, broken)

	summary := agg.Summarize()

	_, err := uuid.Parse(summary.RunID)
	require.NoError(t, err, "run id is a valid uuid")
	assert.False(t, summary.GeneratedAt.IsZero())
	assert.Equal(t, 2, summary.Reports)
	assert.Equal(t, diagnostic.Totals{Errors: 2, Warnings: 1, Infos: 1}, summary.Totals)
	require.Len(t, summary.Diagnostics, 4)
	assert.Equal(t, diagnostic.CodeUnusedSourceField, summary.Diagnostics[0].Code,
		"collection order then emission order")

	data, err := json.Marshal(summary)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"run_id", "generated_at", "reports", "totals", "by_code", "diagnostics"} {
		assert.Contains(t, decoded, key)
	}
}
