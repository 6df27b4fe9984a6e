package services

import "errors"

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// ErrStoreUnavailable wraps a store operation that kept failing after
	// the configured retries. Distinct from credential and validation
	// failures so the surface can answer "try again later" honestly.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// Authentication errors. Unknown identifier and wrong password are
	// deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Alert specific errors
	ErrAlertNotFound        = errors.New("alert not found")
	ErrAlertAlreadyResolved = errors.New("alert already resolved")

	// Complaint specific errors
	ErrComplaintNotFound = errors.New("complaint not found")

	// Registry specific errors
	ErrStudentNotFound = errors.New("student not found")
)

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlertNotFound) ||
		errors.Is(err, ErrComplaintNotFound) ||
		errors.Is(err, ErrStudentNotFound)
}

// IsConflict checks if error represents an illegal state transition
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlertAlreadyResolved)
}

// IsUnavailable checks if error represents a store connectivity failure
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
