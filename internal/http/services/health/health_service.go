// Package health checks the dependencies the service needs to serve traffic.
package health

import (
	"context"
	"time"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/health"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

type Deps struct {
	// StoreCheck is critical: without the credential store nothing works.
	StoreCheck func(ctx context.Context) error
	// CacheCheck backs the refresh rotation ledger. A failure degrades.
	CacheCheck func(ctx context.Context) error
	Version    string
	Timeout    time.Duration
}

type healthService struct {
	deps Deps
}

func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()

	resp := dto.HealthResponse{
		Version:    s.deps.Version,
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
	}

	critical, degraded := false, false

	if s.deps.StoreCheck == nil {
		resp.Components["store"] = dto.HealthStatus{Status: "error", Message: "not initialized"}
		critical = true
	} else if err := s.deps.StoreCheck(ctx); err != nil {
		resp.Components["store"] = dto.HealthStatus{Status: "error", Message: "unavailable"}
		critical = true
		log.Error("store unavailable", logger.Err(err))
	} else {
		resp.Components["store"] = dto.HealthStatus{Status: "ok"}
	}

	if s.deps.CacheCheck == nil {
		resp.Components["cache"] = dto.HealthStatus{Status: "disabled"}
	} else if err := s.deps.CacheCheck(ctx); err != nil {
		resp.Components["cache"] = dto.HealthStatus{Status: "error", Message: "unavailable"}
		degraded = true
		log.Warn("cache unavailable", logger.Err(err))
	} else {
		resp.Components["cache"] = dto.HealthStatus{Status: "ok"}
	}

	switch {
	case critical:
		resp.Status = "unavailable"
	case degraded:
		resp.Status = "degraded"
	default:
		resp.Status = "ready"
	}
	return resp
}
