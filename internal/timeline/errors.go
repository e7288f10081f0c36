package timeline

import "fmt"

// ValidationError is the structured-field error shape spec.md §7 mandates
// for every validation-kind failure: a JSON-pointer-style location, a
// stable code, and the line/action context callers attach to it.
type ValidationError struct {
	Code        string `json:"code"`
	Location    string `json:"location"`
	Message     string `json:"message"`
	LineNumber  int    `json:"line_number,omitempty"`
	ActionIndex int    `json:"action_index,omitempty"`
	ActionID    string `json:"action_id,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Location, e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Error codes. Stable strings — callers and tests match on these, not on
// the human-readable message.
const (
	CodeSchemaInvalid      = "schema_invalid"
	CodeDuplicateID        = "duplicate_id"
	CodeEndBeforeStart     = "end_before_start"
	CodeEmptyText          = "empty_text"
	CodeNegativeStart      = "negative_start"
	CodeUnparsableLine     = "unparsable_line"
	CodeInvalidTimestamp   = "invalid_timestamp"
	CodeEmptyOutput        = "empty_output"
	CodeUnsupportedFormat  = "unsupported_format"
)

func newErr(code, location, message string) *ValidationError {
	return &ValidationError{Code: code, Location: location, Message: message}
}
