package middlewares

import (
	"context"

	"github.com/dropDatabas3/lmsauth/internal/http/services/session"
)

type ctxKey string

const (
	ctxIdentityKey  ctxKey = "identity"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithIdentity stores the authenticated caller on ctx.
func WithIdentity(ctx context.Context, id *session.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, id)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetIdentity returns the caller set by RequireAuth, or nil.
func GetIdentity(ctx context.Context) *session.Identity {
	if v, ok := ctx.Value(ctxIdentityKey).(*session.Identity); ok {
		return v
	}
	return nil
}

// GetUserID is a shortcut for GetIdentity(ctx).ID.
func GetUserID(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil {
		return id.ID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}
