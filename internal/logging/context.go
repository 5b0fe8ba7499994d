package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type loggingContextKey string

const (
	traceIDSize   = 16
	requestIDSize = 8

	loggingContextKeyTraceID          loggingContextKey = "trace_id"
	loggingContextKeyRequestID        loggingContextKey = "request_id"
	loggingContextKeyRequestStartTime loggingContextKey = "request_start_time"
	loggingContextKeyTransport        loggingContextKey = "transport"
	loggingContextKeyMethod           loggingContextKey = "method"
	loggingContextKeyTool             loggingContextKey = "tool"
)

// GenerateTraceID generates a unique trace ID.
func GenerateTraceID() string {
	b := make([]byte, traceIDSize)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("trace_%d", time.Now().UnixNano())
	}

	return hex.EncodeToString(b)
}

// GenerateRequestID generates a unique request ID.
func GenerateRequestID() string {
	b := make([]byte, requestIDSize)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}

	return hex.EncodeToString(b)
}

// ContextWithTracing adds trace and request IDs plus the start time to ctx.
func ContextWithTracing(ctx context.Context, traceID, requestID string) context.Context {
	ctx = context.WithValue(ctx, loggingContextKeyTraceID, traceID)
	ctx = context.WithValue(ctx, loggingContextKeyRequestID, requestID)
	ctx = context.WithValue(ctx, loggingContextKeyRequestStartTime, time.Now())

	return ctx
}

// ContextWithTransport records which frontend received the request.
func ContextWithTransport(ctx context.Context, transport string) context.Context {
	if transport != "" {
		ctx = context.WithValue(ctx, loggingContextKeyTransport, transport)
	}

	return ctx
}

// ContextWithMethod adds the JSON-RPC method or HTTP route to context.
func ContextWithMethod(ctx context.Context, method string) context.Context {
	if method != "" {
		ctx = context.WithValue(ctx, loggingContextKeyMethod, method)
	}

	return ctx
}

// ContextWithTool adds the tool being called to context.
func ContextWithTool(ctx context.Context, tool string) context.Context {
	if tool != "" {
		ctx = context.WithValue(ctx, loggingContextKeyTool, tool)
	}

	return ctx
}

// GetTraceID retrieves trace ID from context.
func GetTraceID(ctx context.Context) string {
	return extractStringFromContext(ctx, loggingContextKeyTraceID)
}

// GetRequestID retrieves request ID from context.
func GetRequestID(ctx context.Context) string {
	return extractStringFromContext(ctx, loggingContextKeyRequestID)
}

// GetTransport retrieves the frontend name from context.
func GetTransport(ctx context.Context) string {
	return extractStringFromContext(ctx, loggingContextKeyTransport)
}

// GetRequestDuration calculates request duration from context.
func GetRequestDuration(ctx context.Context) time.Duration {
	if startTime := ctx.Value(loggingContextKeyRequestStartTime); startTime != nil {
		if startTimeVal, ok := startTime.(time.Time); ok {
			return time.Since(startTimeVal)
		}
	}

	return 0
}

// LogRequestComplete logs, at debug level, that the request carried by ctx
// finished. The duration is measured from ContextWithTracing.
func LogRequestComplete(ctx context.Context, logger *zap.Logger, additionalFields ...zap.Field) {
	fields := WithRequestContext(ctx)
	fields = append(fields, zap.Duration(FieldDuration, GetRequestDuration(ctx)))
	fields = append(fields, additionalFields...)

	logger.Debug("request completed", fields...)
}
