package gateway

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request ID (uuid.UUID) sent as X-Request-ID.
	RequestIDKey contextKey = "RequestID"
	// OperationKey is the context key for the GraphQL operation name (string) of the request.
	OperationKey contextKey = "Operation"
)

// ContextWithRequestID returns a context carrying the request ID.
// A request made with it reuses the ID instead of generating a new one.
func ContextWithRequestID(ctx context.Context, requestID uuid.UUID) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFromContext returns the request ID from the context if it exists
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RequestIDKey).(uuid.UUID)
	return id, ok
}

// ContextWithOperation returns a context carrying the GraphQL operation name
func ContextWithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// OperationFromContext returns the GraphQL operation name from the context if it exists
func OperationFromContext(ctx context.Context) (string, bool) {
	operation, ok := ctx.Value(OperationKey).(string)
	return operation, ok
}
