// Package apperr defines the errors the service reports to its callers.
package apperr

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ValidationError reports malformed input, keyed by JSON field name.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], ", ")))
	}
	return "invalid data: " + strings.Join(parts, "; ")
}

// DomainError is a business-rule violation with a stable code and status.
type DomainError struct {
	Code    string
	Status  int
	Message string
}

func (e *DomainError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrMeasureNotFound       = &DomainError{Code: "MEASURE_NOT_FOUND", Status: http.StatusNotFound, Message: "Measure not found"}
	ErrMeasuresNotFound      = &DomainError{Code: "MEASURES_NOT_FOUND", Status: http.StatusNotFound, Message: "No measures found"}
	ErrDoubleReport          = &DomainError{Code: "DOUBLE_REPORT", Status: http.StatusConflict, Message: "Monthly reading already taken"}
	ErrConfirmationDuplicate = &DomainError{Code: "CONFIRMATION_DUPLICATE", Status: http.StatusConflict, Message: "Measure already confirmed"}
	ErrInvalidType           = &DomainError{Code: "INVALID_TYPE", Status: http.StatusBadRequest, Message: "Measure type not allowed"}
)

// ExtractionError means the reading service rejected or could not read the image.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
