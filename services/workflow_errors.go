package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// ErrorKind classifies workflow failures so controllers can map them to
// HTTP status codes without string matching.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindForbidden     ErrorKind = "forbidden"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindConflict      ErrorKind = "conflict"
	KindInvalidState  ErrorKind = "invalid_state"
	KindPrecondFailed ErrorKind = "precondition_failed"
	KindInternal      ErrorKind = "internal"
)

// WorkflowError is the error type returned by every service operation that
// fails for a domain reason. Messages for non-internal kinds are safe to
// show to callers verbatim.
type WorkflowError struct {
	Kind          ErrorKind
	Message       string
	CorrelationID string
	Err           error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Errf builds a caller-facing workflow error.
func Errf(kind ErrorKind, format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Internalf wraps an infrastructure failure. The underlying error is logged
// with a correlation id; only the id is surfaced to the caller.
func Internalf(err error, format string, args ...interface{}) *WorkflowError {
	correlationID := uuid.NewString()
	message := fmt.Sprintf(format, args...)
	log.Printf("internal error [%s]: %s: %v", correlationID, message, err)
	return &WorkflowError{
		Kind:          KindInternal,
		Message:       message,
		CorrelationID: correlationID,
		Err:           err,
	}
}

// KindOf extracts the kind from any error; non-workflow errors are internal.
func KindOf(err error) ErrorKind {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr.Kind
	}
	return KindInternal
}

// AsWorkflowError returns err as a *WorkflowError, wrapping unknown errors
// as internal so callers always get a classified error.
func AsWorkflowError(err error) *WorkflowError {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr
	}
	return Internalf(err, "unexpected failure")
}
