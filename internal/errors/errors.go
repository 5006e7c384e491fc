package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// InternalError is the concrete error type carried through the application.
// It wraps a cause (with stack trace, via cockroachdb/errors), an optional
// user facing hint and optional reportable details that are safe to return
// in API responses.
type InternalError struct {
	cause   error
	code    error
	hint    string
	details map[string]interface{}
}

// ErrorBuilder provides the fluent construction API:
//
//	ierr.NewError("plan not found").
//		WithHint("Please provide a valid plan").
//		Mark(ierr.ErrNotFound)
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts building an error from a message
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			cause: errors.NewWithDepth(1, msg),
		},
	}
}

// NewErrorf starts building an error from a format string
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			cause: errors.NewWithDepthf(1, format, args...),
		},
	}
}

// WithError starts building an error that wraps an existing error
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			cause: err,
		},
	}
}

// WithHint attaches a user facing hint
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted user facing hint
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err.hint = errors.Newf(format, args...).Error()
	return b
}

// WithReportableDetails attaches details that are safe to expose in responses
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.details = details
	return b
}

// Mark finalizes the error with a sentinel code. Mark must be the last call
// in the chain; the returned error satisfies errors.Is against the code.
func (b *ErrorBuilder) Mark(code error) error {
	b.err.code = code
	return b.err
}

func (e *InternalError) Error() string {
	return e.cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Is reports whether the error carries the given sentinel code
func (e *InternalError) Is(target error) bool {
	if e.code != nil && errors.Is(e.code, target) {
		return true
	}
	return errors.Is(e.cause, target)
}

// Hint returns the first user facing hint found in the error chain
func Hint(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) && ie.hint != "" {
		return ie.hint
	}
	return ""
}

// ReportableDetails returns the first reportable details found in the chain
func ReportableDetails(err error) map[string]interface{} {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.details
	}
	return nil
}

// Code returns the stable string code for the error's sentinel
func Code(err error) string {
	switch {
	case IsValidation(err):
		return ErrValidation.Error()
	case IsNotFound(err):
		return ErrNotFound.Error()
	case IsAlreadyExists(err):
		return ErrAlreadyExists.Error()
	case IsVersionConflict(err):
		return ErrVersionConflict.Error()
	case IsUnauthorized(err):
		return ErrUnauthorized.Error()
	case IsPermissionDenied(err):
		return ErrPermissionDenied.Error()
	case IsInvalidOperation(err):
		return ErrInvalidOperation.Error()
	case IsHTTPClient(err):
		return ErrHTTPClient.Error()
	case IsDatabase(err):
		return ErrDatabase.Error()
	case IsSystem(err):
		return ErrSystem.Error()
	default:
		return ErrInternal.Error()
	}
}

// HTTPStatus maps an error to the HTTP status code the API should return
func HTTPStatus(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err), IsVersionConflict(err):
		return http.StatusConflict
	case IsUnauthorized(err):
		return http.StatusUnauthorized
	case IsPermissionDenied(err):
		return http.StatusForbidden
	case IsInvalidOperation(err):
		return http.StatusBadRequest
	case IsHTTPClient(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
