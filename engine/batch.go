package engine

import (
	"shape-mapper/diagnostic"
	"shape-mapper/mapping"
	"shape-mapper/shape"
)

// ExecuteBatch maps many records through one table, aggregating every report
// into a reporter. Each execution is fully independent; callers needing
// parallelism can shard the slice and run ExecuteBatch per shard without
// coordination.
func ExecuteBatch(
	records []shape.Record,
	srcShape, dstShape *shape.Descriptor,
	tbl *mapping.Table,
	mode Mode,
) ([]Result, *diagnostic.Reporter) {
	results := make([]Result, 0, len(records))
	reporter := diagnostic.NewReporter()

	for _, rec := range records {
		res := Execute(rec, srcShape, dstShape, tbl, mode)
		results = append(results, res)
		reporter.Collect(res.Report)
	}

	return results, reporter
}
