// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; the lifecycle service reads them without
// importing net/http.
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//	caller := requestcontext.CallerID(ctx)
//
// Tests inject a fixed clock with requestcontext.WithTime.
package requestcontext

import (
	"context"
	"time"

	id "foodsupply/pkg/domain"
)

type (
	callerIDKey    struct{}
	callerRoleKey  struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyCallerID    = callerIDKey{}
	ContextKeyCallerRole  = callerRoleKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// CallerID retrieves the authenticated party submitting the operation.
// Returns the zero value if the request was not authenticated.
func CallerID(ctx context.Context) id.PartyID {
	if caller, ok := ctx.Value(ContextKeyCallerID).(id.PartyID); ok {
		return caller
	}
	return ""
}

// WithCallerID injects the authenticated party into the context.
func WithCallerID(ctx context.Context, caller id.PartyID) context.Context {
	return context.WithValue(ctx, ContextKeyCallerID, caller)
}

// CallerRole retrieves the role claimed by the caller's token.
func CallerRole(ctx context.Context) string {
	if role, ok := ctx.Value(ContextKeyCallerRole).(string); ok {
		return role
	}
	return ""
}

// WithCallerRole injects the caller's claimed role into the context.
func WithCallerRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ContextKeyCallerRole, role)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, tests, reconciliation runs).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
