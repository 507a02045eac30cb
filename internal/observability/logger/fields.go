package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field is re-exported so callers can build field slices without importing zap.
type Field = zap.Field

// ---- HTTP ----

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func DurationMs(v time.Duration) zap.Field {
	return zap.Int64("duration_ms", v.Milliseconds())
}

// ---- Identity ----

func UserID(v string) zap.Field { return zap.String("user_id", v) }
func Role(v string) zap.Field   { return zap.String("role", v) }

// Email logs the address masked.
func Email(v string) zap.Field { return zap.String("email", MaskEmail(v)) }

// TokenVersion logs the per-user revocation counter.
func TokenVersion(v int) zap.Field { return zap.Int("token_version", v) }

// ---- System ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func String(key, v string) zap.Field     { return zap.String(key, v) }
func Int(key string, v int) zap.Field    { return zap.Int(key, v) }
func Any(key string, v any) zap.Field    { return zap.Any(key, v) }
func Duration(key string, v time.Duration) zap.Field {
	return zap.Duration(key, v)
}
