package engagement

import (
	"fmt"
	"strings"
)

// Error codes surfaced to the HTTP layer
const (
	CodeMissingField     = "MISSING_FIELD"
	CodeRangeViolation   = "RANGE_VIOLATION"
	CodeUnknownCategory  = "UNKNOWN_CATEGORY"
	CodeUnsupportedInput = "UNSUPPORTED_INPUT"
)

// MissingFieldError reports a required feature absent from the input
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Missing column: %s", e.Field)
}

// MissingColumnsError reports required columns absent from a CSV upload
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("CSV must contain columns: %s", strings.Join(e.Columns, ", "))
}

// RangeViolation describes one feature outside its plausibility interval
type RangeViolation struct {
	Feature string
	Value   float64
	Min     float64
	Max     float64
}

func (v RangeViolation) String() string {
	return fmt.Sprintf("%s must be between %g and %g", v.Feature, v.Min, v.Max)
}

// RangeViolationError lists every failing feature of a request
type RangeViolationError struct {
	Violations []RangeViolation
}

func (e *RangeViolationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

// UnknownCategoryError reports a categorical value outside the learned
// vocabulary. Unlike numeric features these are never imputed.
type UnknownCategoryError struct {
	Feature string
	Value   string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown value %q for categorical feature %s", e.Value, e.Feature)
}

// UnsupportedInputError reports a value of an unusable type or format
type UnsupportedInputError struct {
	Field  string
	Reason string
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("unsupported value for %s: %s", e.Field, e.Reason)
}
