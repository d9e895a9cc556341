package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the services wraps exactly one of these,
// or is a *DependencyError.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrInvalidDateRange  = fmt.Errorf("%w: check-out date precedes check-in date", ErrValidation)
	ErrInvalidGuestCount = fmt.Errorf("%w: guest count must be at least 1", ErrValidation)
	ErrInvalidRating     = fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	ErrPriceMismatch     = fmt.Errorf("%w: submitted total price does not match the computed price", ErrValidation)

	ErrHotelNotFound = fmt.Errorf("hotel %w", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)

	ErrDuplicateReview = fmt.Errorf("%w: review already submitted for this hotel", ErrConflict)
)

// Invalid builds a validation error with a human readable message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// DependencyError reports a failing store or external collaborator.
// Its message is safe to log, never to show to callers.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *DependencyError) Unwrap() error { return e.Err }

func Dependency(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}

// IsClassified reports whether err already belongs to a known error class.
func IsClassified(err error) bool {
	var de *DependencyError
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) ||
		errors.As(err, &de)
}
