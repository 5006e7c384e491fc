package errors

import "github.com/cockroachdb/errors"

// Sentinel error codes. Every error surfaced by the application is marked
// with exactly one of these so callers and the HTTP layer can classify it
// without string matching.
var (
	ErrValidation       = errors.New("validation_error")
	ErrNotFound         = errors.New("not_found")
	ErrAlreadyExists    = errors.New("already_exists")
	ErrVersionConflict  = errors.New("version_conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission_denied")
	ErrInvalidOperation = errors.New("invalid_operation")
	ErrHTTPClient       = errors.New("http_client_error")
	ErrDatabase         = errors.New("database_error")
	ErrSystem           = errors.New("system_error")
	ErrInternal         = errors.New("internal_error")
)

// IsValidation checks if the error is marked as a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if the error is marked as a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is marked as an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsVersionConflict checks if the error is marked as a version conflict
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsUnauthorized checks if the error is marked as an unauthorized error
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsPermissionDenied checks if the error is marked as a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsInvalidOperation checks if the error is marked as an invalid operation
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsHTTPClient checks if the error is marked as an upstream HTTP client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

// IsDatabase checks if the error is marked as a database error
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsSystem checks if the error is marked as a system error
func IsSystem(err error) bool {
	return errors.Is(err, ErrSystem)
}

// IsInternal checks if the error is marked as an internal error
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal) || errors.Is(err, ErrSystem) || errors.Is(err, ErrDatabase)
}
