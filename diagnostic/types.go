package diagnostic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Code is a unique identifier for one class of diagnostic.
type Code string

const (
	// CodeMissingRequiredField: a required destination field has no correspondence.
	CodeMissingRequiredField Code = "missing_required_field"
	// CodeUnknownSourceField: a correspondence reads a field absent from the source shape.
	CodeUnknownSourceField Code = "unknown_source_field"
	// CodeUnknownDestinationField: a correspondence targets a field absent from the destination shape.
	CodeUnknownDestinationField Code = "unknown_destination_field"
	// CodeKindMismatch: source and destination kinds are incompatible without a transform.
	CodeKindMismatch Code = "kind_mismatch"
	// CodeImplicitCoercion: kinds are compatible but not identical (numeric widening).
	CodeImplicitCoercion Code = "implicit_coercion"
	// CodeUnusedSourceField: a source field is referenced by no correspondence.
	CodeUnusedSourceField Code = "unused_source_field"
	// CodeMissingTransform: a correspondence without a source carries no transform.
	CodeMissingTransform Code = "missing_transform"
	// CodeTransformFailed: a transform returned an error or panicked during execution.
	CodeTransformFailed Code = "transform_failed"
	// CodeSubstitutedDefault: best-effort execution substituted a zero value.
	CodeSubstitutedDefault Code = "substituted_default"
	// CodeMissingRuntimeValue: strict execution found no value for a required
	// field and refused to substitute one.
	CodeMissingRuntimeValue Code = "missing_runtime_value"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as its stable string name so external
// tooling never depends on the numeric ordering.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a severity from its string name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	switch name {
	case "info":
		*s = SeverityInfo
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", name)
	}

	return nil
}

// Diagnostic represents a single diagnostic message. Immutable value.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity `json:"severity"`
	// Code is a unique identifier for this type of diagnostic.
	Code Code `json:"code"`
	// DestinationField identifies which destination field this relates to (if any).
	DestinationField string `json:"destination_field,omitempty"`
	// SourceField identifies which source field this relates to (if any).
	SourceField string `json:"source_field,omitempty"`
	// Message is the human-readable description.
	Message string `json:"message"`
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.DestinationField != "" {
		prefix = append(prefix, d.DestinationField)
	}

	if d.SourceField != "" {
		prefix = append(prefix, "<- "+d.SourceField)
	}

	msg := fmt.Sprintf("[%s] [%s] %s", d.Severity, d.Code, d.Message)

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

// Report holds the diagnostics of one check or one mapping run, in emission
// order. Append-only while the run lasts; callers treat it as read-only after.
type Report struct {
	diags []Diagnostic
}

// Add appends a diagnostic.
func (r *Report) Add(d Diagnostic) {
	r.diags = append(r.diags, d)
}

// AddError appends an error diagnostic.
func (r *Report) AddError(code Code, dstField, srcField, message string) {
	r.Add(Diagnostic{
		Severity:         SeverityError,
		Code:             code,
		DestinationField: dstField,
		SourceField:      srcField,
		Message:          message,
	})
}

// AddWarning appends a warning diagnostic.
func (r *Report) AddWarning(code Code, dstField, srcField, message string) {
	r.Add(Diagnostic{
		Severity:         SeverityWarning,
		Code:             code,
		DestinationField: dstField,
		SourceField:      srcField,
		Message:          message,
	})
}

// AddInfo appends an info diagnostic.
func (r *Report) AddInfo(code Code, dstField, srcField, message string) {
	r.Add(Diagnostic{
		Severity:         SeverityInfo,
		Code:             code,
		DestinationField: dstField,
		SourceField:      srcField,
		Message:          message,
	})
}

// Merge appends all diagnostics of another report, preserving order.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}

	r.diags = append(r.diags, other.diags...)
}

// Len returns the number of diagnostics.
func (r *Report) Len() int {
	return len(r.diags)
}

// Diagnostics returns a copy of the diagnostics in emission order.
func (r *Report) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), r.diags...)
}

// HasErrors returns true if there are any error diagnostics.
func (r *Report) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			return true
		}
	}

	return false
}

// IsValid returns true if there are no errors.
func (r *Report) IsValid() bool {
	return !r.HasErrors()
}

// Count returns the number of diagnostics with the given severity.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, d := range r.diags {
		if d.Severity == s {
			n++
		}
	}

	return n
}

// Err returns a combined error from all error diagnostics, or nil if valid.
func (r *Report) Err() error {
	if r.IsValid() {
		return nil
	}

	var parts []string
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			parts = append(parts, d.String())
		}
	}

	return errors.New(strings.Join(parts, "; "))
}

// MarshalJSON serializes the report as an ordered array of diagnostics,
// the stable form consumed by external tooling.
func (r *Report) MarshalJSON() ([]byte, error) {
	if r.diags == nil {
		return json.Marshal([]Diagnostic{})
	}

	return json.Marshal(r.diags)
}

// UnmarshalJSON parses a report from its serialized array form.
func (r *Report) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.diags)
}
