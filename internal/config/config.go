// Package config loads the service configuration: YAML file, then
// environment overrides, then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const minJWTSecretLen = 32

var (
	ErrMissingJWTSecret = errors.New("config: JWT_SECRET is required")
	ErrWeakJWTSecret    = fmt.Errorf("config: JWT_SECRET must be at least %d bytes", minJWTSecretLen)
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver      string `yaml:"driver"`
		DSN         string `yaml:"dsn"`
		AutoMigrate bool   `yaml:"auto_migrate"`
		Postgres    struct {
			MaxConns        int           `yaml:"max_conns"`
			MinConns        int           `yaml:"min_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	JWT struct {
		Secret     string        `yaml:"secret"`
		Issuer     string        `yaml:"issuer"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Auth struct {
		Cookies struct {
			AccessName  string `yaml:"access_name"`
			RefreshName string `yaml:"refresh_name"`
			Domain      string `yaml:"domain"`
			SameSite    string `yaml:"same_site"`
			// Secure defaults to true in prod.
			Secure *bool `yaml:"secure"`
		} `yaml:"cookies"`
		// TokensInBody also returns tokens in JSON responses.
		TokensInBody bool `yaml:"tokens_in_body"`

		OTP struct {
			Length       int           `yaml:"length"`
			TTL          time.Duration `yaml:"ttl"`
			MinInterval  time.Duration `yaml:"min_interval"`
			Window       time.Duration `yaml:"window"`
			MaxPerWindow int           `yaml:"max_per_window"`
		} `yaml:"otp"`

		Register struct {
			AllowedRoles []string `yaml:"allowed_roles"`
		} `yaml:"register"`

		// RefreshGrace lets a refresh token that was exchanged less than this
		// long ago be refused without revoking the session. 0 disables it.
		RefreshGrace time.Duration `yaml:"refresh_grace"`
	} `yaml:"auth"`

	Rate struct {
		Enabled bool          `yaml:"enabled"`
		Limit   int           `yaml:"limit"`
		Window  time.Duration `yaml:"window"`
	} `yaml:"rate"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Email struct {
		SendTimeout time.Duration `yaml:"send_timeout"`
	} `yaml:"email"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int    `yaml:"min_length"`
			RequireUpper  bool   `yaml:"require_upper"`
			RequireLower  bool   `yaml:"require_lower"`
			RequireDigit  bool   `yaml:"require_digit"`
			RequireSymbol bool   `yaml:"require_symbol"`
			BlacklistPath string `yaml:"blacklist_path"`
		} `yaml:"password_policy"`
	} `yaml:"security"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads path, applies env overrides and fills defaults. It does not
// validate; call Validate.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	return &c, nil
}

// Default is env overrides plus defaults, with no file.
func Default() *Config {
	var c Config
	c.applyEnvOverrides()
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "LMS"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "lmsauth:"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "lmsauth"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 7 * 24 * time.Hour
	}

	ck := &c.Auth.Cookies
	if ck.AccessName == "" {
		ck.AccessName = "access-token-cookie"
	}
	if ck.RefreshName == "" {
		ck.RefreshName = "refresh-token-cookie"
	}
	if ck.SameSite == "" {
		ck.SameSite = "lax"
	}
	if ck.Secure == nil {
		secure := c.IsProd()
		ck.Secure = &secure
	}

	o := &c.Auth.OTP
	if o.Length == 0 {
		o.Length = 6
	}
	if o.TTL == 0 {
		o.TTL = 10 * time.Minute
	}
	if o.MinInterval == 0 {
		o.MinInterval = 60 * time.Second
	}
	if o.Window == 0 {
		o.Window = 60 * time.Minute
	}
	if o.MaxPerWindow == 0 {
		o.MaxPerWindow = 5
	}
	if len(c.Auth.Register.AllowedRoles) == 0 {
		c.Auth.Register.AllowedRoles = []string{"STUDENT", "INSTRUCTOR"}
	}

	if c.Rate.Limit == 0 {
		c.Rate.Limit = 20
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Email.SendTimeout == 0 {
		c.Email.SendTimeout = 30 * time.Second
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 8
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) IsProd() bool { return c.App.Env == "prod" }

// CookieSecure is the resolved Secure flag.
func (c *Config) CookieSecure() bool {
	return c.Auth.Cookies.Secure != nil && *c.Auth.Cookies.Secure
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// applyEnvOverrides lets the environment win over the YAML file.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("APP_NAME"); ok {
		c.App.Name = v
	}
	if v, ok := getEnvStr("SERVICE_VERSION"); ok {
		c.App.Version = v
	}

	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvBool("STORAGE_AUTO_MIGRATE"); ok {
		c.Storage.AutoMigrate = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvDur("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}

	if v, ok := getEnvStr("AUTH_COOKIE_DOMAIN"); ok {
		c.Auth.Cookies.Domain = v
	}
	if v, ok := getEnvStr("AUTH_COOKIE_SAMESITE"); ok {
		c.Auth.Cookies.SameSite = strings.ToLower(v)
	}
	if v, ok := getEnvBool("AUTH_COOKIE_SECURE"); ok {
		c.Auth.Cookies.Secure = &v
	}
	if v, ok := getEnvBool("AUTH_TOKENS_IN_BODY"); ok {
		c.Auth.TokensInBody = v
	}
	if v, ok := getEnvCSV("AUTH_REGISTER_ALLOWED_ROLES"); ok {
		c.Auth.Register.AllowedRoles = v
	}
	if v, ok := getEnvDur("AUTH_REFRESH_GRACE"); ok {
		c.Auth.RefreshGrace = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LIMIT"); ok {
		c.Rate.Limit = v
	}
	if v, ok := getEnvDur("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}

	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// Validate fails on anything that would make the service unsafe or unable
// to start. There is no fallback signing secret.
func (c *Config) Validate() error {
	switch n := len(c.JWT.Secret); {
	case n == 0:
		return ErrMissingJWTSecret
	case n < minJWTSecretLen:
		return ErrWeakJWTSecret
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return errors.New("config: cache.redis.addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind)
	}
	switch c.Auth.Cookies.SameSite {
	case "lax", "strict":
	case "none":
		if !c.CookieSecure() {
			return errors.New("config: SameSite=None cookies must be Secure")
		}
	default:
		return fmt.Errorf("config: unknown cookie same_site %q", c.Auth.Cookies.SameSite)
	}
	o := c.Auth.OTP
	if o.Length < 4 || o.Length > 10 || o.TTL <= 0 || o.Window <= 0 || o.MaxPerWindow <= 0 || o.MinInterval < 0 {
		return errors.New("config: invalid auth.otp settings")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("config: refresh TTL must exceed access TTL")
	}
	if c.Auth.RefreshGrace < 0 || c.Auth.RefreshGrace > time.Minute {
		return errors.New("config: auth.refresh_grace must be between 0 and 1m")
	}
	return nil
}
