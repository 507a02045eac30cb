package auth

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/lmsauth/internal/http/errors"
	svc "github.com/dropDatabas3/lmsauth/internal/http/services/session"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
	"github.com/dropDatabas3/lmsauth/internal/otp"
)

// writeError maps service errors onto the API taxonomy. Unclassified errors
// are logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *httperrors.AppError
	var throttle *otp.ThrottleError

	switch {
	case errors.As(err, &appErr):
		httperrors.WriteError(w, appErr)

	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields)
	case errors.Is(err, svc.ErrInvalidEmail):
		httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail("email"))
	case errors.Is(err, svc.ErrInvalidRole):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("unknown role"))
	case errors.Is(err, svc.ErrRoleNotAllowed):
		httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("role cannot be self-assigned"))
	case errors.Is(err, svc.ErrPasswordMismatch):
		httperrors.WriteError(w, httperrors.ErrPasswordMismatch)

	case errors.Is(err, svc.ErrEmailExists):
		httperrors.WriteError(w, httperrors.ErrEmailAlreadyInUse)
	case errors.Is(err, svc.ErrPendingExists):
		httperrors.WriteError(w, httperrors.ErrRegistrationPending)
	case errors.Is(err, svc.ErrPendingNotFound):
		httperrors.WriteError(w, httperrors.ErrPendingNotFound)

	case errors.Is(err, otp.ErrMismatch), errors.Is(err, otp.ErrNoCodeIssued):
		httperrors.WriteError(w, httperrors.ErrInvalidCode)
	case errors.Is(err, otp.ErrExpired):
		httperrors.WriteError(w, httperrors.ErrCodeExpired)
	case errors.As(err, &throttle):
		base := httperrors.ErrResendTooSoon
		if errors.Is(err, otp.ErrRateLimited) {
			base = httperrors.ErrRateLimitExceeded
		}
		httperrors.WriteError(w, base.WithRetryAfter(throttle.RetryAfter))

	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrInvalidToken):
		httperrors.WriteError(w, httperrors.ErrTokenInvalid)
	case errors.Is(err, svc.ErrWrongPassword):
		httperrors.WriteError(w, httperrors.ErrWrongPassword)

	default:
		if pe, ok := svc.IsPolicyViolation(err); ok {
			httperrors.WriteError(w, httperrors.ErrPasswordTooWeak.WithDetail(strings.Join(pe.Reasons, ",")))
			return
		}
		logger.From(r.Context()).Error("request failed", logger.Layer("controller"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
