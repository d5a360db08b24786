package sheet

import (
	"fmt"
	"strings"
)

// Import error codes
const (
	ErrCodeInvalidFile       = "ERR_IMPORT_INVALID_FILE"
	ErrCodeEmptyFile         = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeMissingHeader     = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeValidation        = "ERR_IMPORT_VALIDATION"
	ErrCodeRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeInvalidType       = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeInvalidRange      = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
	ErrCodeDuplicate         = "ERR_IMPORT_DUPLICATE"
)

// RowError describes one violation found in one import row.
type RowError struct {
	Sheet   string `json:"sheet,omitempty"`
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	loc := fmt.Sprintf("row %d", e.Row)
	if e.Sheet != "" {
		loc = fmt.Sprintf("%s %s", e.Sheet, loc)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s, column %q: %s", loc, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(sheetName string, row int, column, code, message string) RowError {
	return RowError{Sheet: sheetName, Row: row, Column: column, Code: code, Message: message}
}

// ErrorCollection accumulates import violations so a whole batch can be
// validated before anything is rejected: callers see every problem in one
// response instead of fixing them one re-upload at a time.
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a collection capped at maxErrors entries.
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add records an error, dropping the detail (but not the count) past the cap.
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the total number of errors including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if any error was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were dropped due to the cap
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// String renders a human-readable summary.
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s) found", ec.totalCount)
	if ec.IsTruncated() {
		fmt.Fprintf(&sb, " (showing first %d)", ec.maxErrors)
	}
	sb.WriteString(":\n")
	for _, err := range ec.errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// ValidationError is the terminal error for a batch that failed validation.
// It carries every collected violation.
type ValidationError struct {
	Details []RowError `json:"details"`
	Total   int        `json:"total"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("import validation failed with %d error(s)", e.Total)
}

// NewValidationError builds a ValidationError from a collection.
func NewValidationError(ec *ErrorCollection) *ValidationError {
	return &ValidationError{Details: ec.Errors(), Total: ec.TotalCount()}
}
