package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// WithDefaultLogger adds logger to the context unless it already carries
// one.
func WithDefaultLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && l != nil {
		return ctx
	}
	return WithLogger(ctx, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// Ctx is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithRequestID adds a request ID to the context and to its logger.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return WithField(ctx, "request_id", requestID)
}

// RequestID extracts the request ID from context.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logCtx := addField(FromContext(ctx).With(), key, value)
	newLogger := logCtx.Logger()
	return WithLogger(ctx, &newLogger)
}

// WithCredential tags the context logger with a credential identifier.
func WithCredential(ctx context.Context, credentialID string) context.Context {
	return WithField(ctx, "credential_id", credentialID)
}

// WithCTID tags the context logger with a registry CTID.
func WithCTID(ctx context.Context, ctid string) context.Context {
	return WithField(ctx, "ctid", ctid)
}

// WithOrganization tags the context logger with the publishing organization.
func WithOrganization(ctx context.Context, orgCTID string) context.Context {
	return WithField(ctx, "org_ctid", orgCTID)
}
