package session

import (
	"errors"

	"github.com/dropDatabas3/lmsauth/internal/otp"
	"github.com/dropDatabas3/lmsauth/internal/security/password"
)

var (
	ErrMissingFields  = errors.New("missing required fields")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrInvalidRole    = errors.New("unknown role")
	ErrRoleNotAllowed = errors.New("role cannot be self-assigned")

	ErrEmailExists   = errors.New("email already registered")
	ErrPendingExists = errors.New("registration awaiting verification")
	// ErrPendingNotFound is otp.ErrNotFound so callers can match either.
	ErrPendingNotFound = otp.ErrNotFound

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or revoked token")

	ErrPasswordMismatch = errors.New("new password and confirmation differ")
	ErrWrongPassword    = errors.New("current password is incorrect")

	ErrTokenIssueFailed = errors.New("token issue failed")
)

// IsPolicyViolation reports whether err came from the password policy and
// returns it for the caller to list the reasons.
func IsPolicyViolation(err error) (*password.PolicyError, bool) {
	var pe *password.PolicyError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidEmail):
		return "bad_request"
	case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrRoleNotAllowed):
		return "bad_role"
	case errors.Is(err, ErrEmailExists), errors.Is(err, ErrPendingExists):
		return "conflict"
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrWrongPassword):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, otp.ErrNotFound):
		return "not_found"
	case errors.Is(err, otp.ErrMismatch), errors.Is(err, otp.ErrNoCodeIssued):
		return "invalid_code"
	case errors.Is(err, otp.ErrExpired):
		return "expired"
	case errors.Is(err, otp.ErrTooManyRequests), errors.Is(err, otp.ErrRateLimited):
		return "throttled"
	case errors.Is(err, ErrPasswordMismatch):
		return "bad_request"
	}
	if _, ok := IsPolicyViolation(err); ok {
		return "weak_password"
	}
	return "error"
}
