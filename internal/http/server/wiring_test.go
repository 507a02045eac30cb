package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lmsauth/internal/config"
	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.JWT.Secret = strings.Repeat("k", 32)
	return cfg
}

func build(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	reg := prometheus.NewRegistry()
	app, err := Build(context.Background(), cfg, Options{Registry: reg, Gatherer: reg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBuildInMemory(t *testing.T) {
	app := build(t, testConfig())

	rec := get(app.Handler, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(app.Handler, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestBuildWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Cache.Kind = "redis"
	cfg.Cache.Redis.Addr = mr.Addr()
	cfg.Rate.Enabled = true
	cfg.Rate.Limit = 1

	app := build(t, cfg)

	rec := get(app.Handler, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status     string `json:"status"`
		Components map[string]struct {
			Status string `json:"status"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Components["cache"].Status)

	login := func() int {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@example.com","password":"x"}`))
		r.Header.Set("Content-Type", "application/json")
		out := httptest.NewRecorder()
		app.Handler.ServeHTTP(out, r)
		return out.Code
	}
	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusTooManyRequests, login(), "limit shared through redis")

	mr.Close()
	rec = get(app.Handler, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code, "cache loss only degrades")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
}

func TestBuildFailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Kind = "redis"
	cfg.Cache.Redis.Addr = "127.0.0.1:1"

	_, err := Build(context.Background(), cfg, Options{Registry: prometheus.NewRegistry()})
	require.Error(t, err)
}

func TestParseRoles(t *testing.T) {
	roles, err := parseRoles([]string{" student", "Instructor"})
	require.NoError(t, err)
	assert.Equal(t, []repository.Role{repository.RoleStudent, repository.RoleInstructor}, roles)

	_, err = parseRoles([]string{"guest"})
	assert.Error(t, err)
}
