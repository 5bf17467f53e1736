// Package diagnostic provides structured errors, warnings, and infos emitted
// by compatibility checking and mapping execution.
//
// Key capabilities:
//   - Ordered, append-only reports with deterministic serialization
//   - Severity and code classification
//   - Batch aggregation with per-severity and per-code counts
package diagnostic
