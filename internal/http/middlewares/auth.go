package middlewares

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	httperrors "github.com/dropDatabas3/lmsauth/internal/http/errors"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	"github.com/dropDatabas3/lmsauth/internal/http/services/session"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// RequireAuth resolves the access token (cookie first, then Authorization
// header) through guard and stores the identity on the context. It answers
// 401 when the token is missing, invalid or revoked.
func RequireAuth(guard session.Guard, accessCookie string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := helpers.CookieValue(r, accessCookie)
			if raw == "" {
				raw = helpers.BearerToken(r)
			}
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			id, err := guard.Authenticate(r.Context(), raw)
			if err != nil {
				if !errors.Is(err, session.ErrInvalidToken) {
					logger.From(r.Context()).Error("authentication lookup failed", logger.Err(err))
					httperrors.WriteError(w, httperrors.ErrInternalServerError)
					return
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(id.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only callers holding one of roles. It must run after
// RequireAuth.
func RequireRole(roles ...repository.Role) Middleware {
	allowed := make(map[repository.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r.Context())
			if id == nil {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			if !allowed[id.Role] {
				httperrors.WriteError(w, httperrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
