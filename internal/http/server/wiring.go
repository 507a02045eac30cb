// Package server assembles the service from configuration.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/lmsauth/internal/cache"
	"github.com/dropDatabas3/lmsauth/internal/config"
	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	"github.com/dropDatabas3/lmsauth/internal/email"
	httpmetrics "github.com/dropDatabas3/lmsauth/internal/http"
	authctrl "github.com/dropDatabas3/lmsauth/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/lmsauth/internal/http/controllers/health"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	"github.com/dropDatabas3/lmsauth/internal/http/router"
	healthsvc "github.com/dropDatabas3/lmsauth/internal/http/services/health"
	"github.com/dropDatabas3/lmsauth/internal/http/services/session"
	jwtx "github.com/dropDatabas3/lmsauth/internal/jwt"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
	"github.com/dropDatabas3/lmsauth/internal/otp"
	"github.com/dropDatabas3/lmsauth/internal/rate"
	"github.com/dropDatabas3/lmsauth/internal/security/password"
	"github.com/dropDatabas3/lmsauth/internal/store/memory"
	"github.com/dropDatabas3/lmsauth/internal/store/pg"
)

// App is the wired service. Close releases everything Build opened, after
// waiting for in-flight notification emails.
type App struct {
	Handler http.Handler
	Store   repository.Store
	Session *session.Manager

	notifier *email.AsyncNotifier
	closers  []func() error
}

func (a *App) Close() error {
	if a.notifier != nil {
		a.notifier.Wait()
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Options lets tests replace the metrics registry.
type Options struct {
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

// Build wires store, cache, limiter, mailer, session service and router.
// cfg must already be validated.
func Build(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	log := logger.From(ctx).With(logger.Component("server"), logger.Op("Build"))
	app := &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	// 1. credential store
	var pool func() *pgxpool.Pool
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pg.Open(ctx, pg.Config{
			DSN:             cfg.Storage.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, st.Close)
		if cfg.Storage.AutoMigrate {
			if err := pg.Migrate(ctx, st.Pool()); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations applied")
		}
		app.Store = st
		pool = st.Pool
	default:
		log.Warn("using in-memory store; data is lost on restart")
		app.Store = memory.New()
	}

	// 2. cache + limiter
	var rdb *redis.Client
	if cfg.Cache.Kind == "redis" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
	}
	kv, err := cache.New(cache.Config{Driver: cfg.Cache.Kind, Prefix: cfg.Cache.Redis.Prefix, Redis: rdb})
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, kv.Close)

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if rdb != nil {
			limiter = rate.NewRedisLimiter(rdb, cfg.Cache.Redis.Prefix+"rl:", cfg.Rate.Limit, cfg.Rate.Window)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Limit, cfg.Rate.Window)
		}
	}

	// 3. mail
	var sender email.Sender = email.NoopSender{}
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			From:               cfg.SMTP.From,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		})
	} else {
		log.Warn("smtp host not set; verification emails will be dropped")
	}
	app.notifier = email.NewAsyncNotifier(sender, cfg.App.Name, cfg.Email.SendTimeout)

	// 4. crypto
	codec, err := jwtx.NewCodec(jwtx.Config{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}
	policy, err := PasswordPolicy(cfg)
	if err != nil {
		return nil, err
	}

	roles, err := parseRoles(cfg.Auth.Register.AllowedRoles)
	if err != nil {
		return nil, err
	}

	// 5. session service
	o := cfg.Auth.OTP
	app.Session = session.NewService(session.Deps{
		Store:  app.Store,
		Hasher: password.NewHasher(password.Default),
		Codec:  codec,
		OTP: otp.NewIssuer(app.Store, otp.Policy{
			CodeLength:   o.Length,
			CodeTTL:      o.TTL,
			MinInterval:  o.MinInterval,
			Window:       o.Window,
			MaxPerWindow: o.MaxPerWindow,
		}),
		Notifier:          app.notifier,
		Ledger:            session.NewCacheLedger(kv, session.WithGrace(cfg.Auth.RefreshGrace)),
		Policy:            policy,
		SelfRegisterRoles: roles,
	})

	// 6. HTTP
	metricsHandler, err := httpmetrics.RegisterMetrics(httpmetrics.MetricsConfig{
		Registry: opts.Registry,
		Gatherer: opts.Gatherer,
		Pool:     pool,
	})
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	cookies := helpers.CookieConfig{
		AccessName:  cfg.Auth.Cookies.AccessName,
		RefreshName: cfg.Auth.Cookies.RefreshName,
		Domain:      cfg.Auth.Cookies.Domain,
		SameSite:    cfg.Auth.Cookies.SameSite,
		Secure:      cfg.CookieSecure(),
	}
	app.Handler = router.New(router.Deps{
		Auth: authctrl.NewControllers(app.Session, authctrl.Transport{
			Cookies:      cookies,
			TokensInBody: cfg.Auth.TokensInBody,
		}),
		Health: healthctrl.NewHealthController(healthsvc.NewHealthService(healthsvc.Deps{
			StoreCheck: app.Store.Ping,
			CacheCheck: kv.Ping,
			Version:    cfg.App.Version,
		})),
		Guard:        app.Session,
		AccessCookie: cookies.AccessName,
		Limiter:      limiter,
		Metrics:      metricsHandler,
	})
	return app, nil
}

func parseRoles(names []string) ([]repository.Role, error) {
	out := make([]repository.Role, 0, len(names))
	for _, n := range names {
		r, ok := repository.ParseRole(strings.ToUpper(strings.TrimSpace(n)))
		if !ok {
			return nil, fmt.Errorf("config: unknown role %q in auth.register.allowed_roles", n)
		}
		out = append(out, r)
	}
	return out, nil
}

// PasswordPolicy builds the complexity policy, loading the blacklist file
// when one is configured.
func PasswordPolicy(cfg *config.Config) (password.Policy, error) {
	pp := cfg.Security.PasswordPolicy
	policy := password.Policy{
		MinLength:     pp.MinLength,
		RequireUpper:  pp.RequireUpper,
		RequireLower:  pp.RequireLower,
		RequireDigit:  pp.RequireDigit,
		RequireSymbol: pp.RequireSymbol,
	}
	if pp.BlacklistPath != "" {
		bl, err := password.LoadBlacklist(pp.BlacklistPath)
		if err != nil {
			return policy, fmt.Errorf("password blacklist: %w", err)
		}
		policy.Blacklist = bl
	}
	return policy, nil
}
