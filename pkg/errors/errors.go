package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors
var (
	ErrBillNotFound = errors.New("bill not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeBillNotFound     = "BILL_NOT_FOUND"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
)

// ValidationError carries one or more field-scoped messages. It is
// returned whole: either every supplied field passes and the mutation
// proceeds, or nothing is applied.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for a field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field message was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: %s", ErrCodeValidationFailed, strings.Join(fields, ", "))
}

// Wrap common errors with business context

func WrapBillNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeBillNotFound,
		fmt.Sprintf("Bill with ID %s not found", id),
		ErrBillNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapUnauthorized() *BusinessError {
	return NewBusinessError(
		ErrCodeUnauthorized,
		"invalid or missing admin token",
		ErrUnauthorized,
	)
}
