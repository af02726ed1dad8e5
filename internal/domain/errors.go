package domain

import (
	"errors"
	"fmt"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError reports malformed or out-of-range input. Always a client
// error, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

var ErrValidation = ValidationError{}

var (
	// ErrAuthenticationRequired means no verified identity was presented
	// where one is mandatory.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrAuthorizationDenied means an identity is present but lacks
	// ownership or eligibility for the action.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrCaptchaFailed means the captcha token was missing or rejected.
	// Always fail-closed.
	ErrCaptchaFailed = errors.New("captcha verification failed")
	// ErrDuplicateSignature means the authenticated user already holds a
	// signature on this petition.
	ErrDuplicateSignature = errors.New("petition already signed")
	// ErrInvalidTransition means a status update violates monotonicity.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPetitionClosed means the petition no longer accepts signatures.
	ErrPetitionClosed = errors.New("petition is not accepting signatures")
)

// DependencyError wraps a downstream provider failure. Surfaced to clients
// as a generic server error; detail stays in the logs.
type DependencyError struct {
	Op  string
	Err error
}

func (e DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e DependencyError) Unwrap() error { return e.Err }

func (e DependencyError) Is(target error) bool {
	_, ok := target.(DependencyError)
	if ok {
		return true
	}
	_, ok = target.(*DependencyError)
	return ok
}

var ErrDependency = DependencyError{}
