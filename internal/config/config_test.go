package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", strongSecret)
	c := Default()

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 15*time.Minute, c.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, c.JWT.RefreshTTL)
	assert.Equal(t, "access-token-cookie", c.Auth.Cookies.AccessName)
	assert.Equal(t, "refresh-token-cookie", c.Auth.Cookies.RefreshName)
	assert.Equal(t, "lax", c.Auth.Cookies.SameSite)
	assert.False(t, c.CookieSecure())
	assert.Equal(t, 10*time.Minute, c.Auth.OTP.TTL)
	assert.Equal(t, 60*time.Second, c.Auth.OTP.MinInterval)
	assert.Equal(t, 5, c.Auth.OTP.MaxPerWindow)
	assert.Equal(t, []string{"STUDENT", "INSTRUCTOR"}, c.Auth.Register.AllowedRoles)
	require.NoError(t, c.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: prod
server:
  addr: ":9000"
jwt:
  secret: "from-file-but-too-short"
  access_ttl: 5m
auth:
  cookies:
    domain: example.com
`), 0o600))

	t.Setenv("JWT_SECRET", strongSecret)
	t.Setenv("SERVER_ADDR", ":9100")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", c.Server.Addr)
	assert.Equal(t, 5*time.Minute, c.JWT.AccessTTL)
	assert.Equal(t, "example.com", c.Auth.Cookies.Domain)
	assert.True(t, c.CookieSecure(), "prod defaults to secure cookies")
	require.NoError(t, c.Validate())
}

func TestValidateSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	c := Default()
	require.ErrorIs(t, c.Validate(), ErrMissingJWTSecret)

	c.JWT.Secret = "short"
	require.ErrorIs(t, c.Validate(), ErrWeakJWTSecret)

	c.JWT.Secret = strongSecret
	require.NoError(t, c.Validate())
}

func TestValidateRejectsBadSettings(t *testing.T) {
	t.Setenv("JWT_SECRET", strongSecret)

	c := Default()
	c.Storage.Driver = "mongo"
	assert.Error(t, c.Validate())

	c = Default()
	c.Storage.Driver = "postgres"
	assert.Error(t, c.Validate(), "postgres needs a DSN")

	c = Default()
	c.Auth.Cookies.SameSite = "none"
	assert.Error(t, c.Validate(), "SameSite=None needs Secure")

	c = Default()
	c.JWT.RefreshTTL = c.JWT.AccessTTL
	assert.Error(t, c.Validate())

	c = Default()
	c.Auth.RefreshGrace = 2 * time.Minute
	assert.Error(t, c.Validate(), "refresh grace is capped")
}
