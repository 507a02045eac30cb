// Package logger wraps a process-wide zap logger with request scoping.
//
// Init is called once from main. Handlers and services fetch a scoped logger
// with From(ctx); the HTTP logging middleware stores one per request carrying
// request_id, method and path.
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))
//	log.Warn("otp delivery failed (soft)", logger.Err(err))
package logger
