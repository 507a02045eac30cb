package repository

import "errors"

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a conditional write lost against a concurrent writer.
	ErrConflict = errors.New("conflict")

	// ErrEmailTaken means an active user already owns the email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrPendingExists means a pending registration already exists for the email.
	ErrPendingExists = errors.New("pending registration exists")
)

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
