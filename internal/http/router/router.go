// Package router mounts the API on a chi router.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpmetrics "github.com/dropDatabas3/lmsauth/internal/http"
	authctrl "github.com/dropDatabas3/lmsauth/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/lmsauth/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/lmsauth/internal/http/errors"
	mw "github.com/dropDatabas3/lmsauth/internal/http/middlewares"
	"github.com/dropDatabas3/lmsauth/internal/http/services/session"
	"github.com/dropDatabas3/lmsauth/internal/rate"
)

type Deps struct {
	Auth   *authctrl.Controllers
	Health *healthctrl.HealthController

	Guard        session.Guard
	AccessCookie string

	// Limiter throttles the unauthenticated credential endpoints. Optional.
	Limiter rate.Limiter
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// New builds the root handler.
//
//	GET  /healthz, /readyz, /metrics
//	POST /api/auth/{register,verify-otp,resend-otp,login}   rate limited
//	POST /api/auth/{refresh,logout}
//	GET  /api/auth/me, POST /api/auth/change-password       RequireAuth
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
		httpmetrics.WithMetrics,
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
		r.Get("/readyz", d.Health.Readyz)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	c := d.Auth
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		r.Group(func(r chi.Router) {
			r.Use(mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: d.Limiter,
				KeyFunc: mw.IPPathRateKey,
			}))
			r.Post("/register", c.Register.Register)
			r.Post("/verify-otp", c.OTP.Verify)
			r.Post("/resend-otp", c.OTP.Resend)
			r.Post("/login", c.Login.Login)
		})

		r.Post("/refresh", c.Refresh.Refresh)
		r.Post("/logout", c.Logout.Logout)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth(d.Guard, d.AccessCookie))
			r.Get("/me", c.Me.Me)
			r.Post("/change-password", c.Password.Change)
		})
	})
	return r
}
