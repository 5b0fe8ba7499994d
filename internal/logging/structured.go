// Package logging provides structured logging utilities with error context integration.
package logging

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/actual-software/weather-mcp/internal/errors"
)

// WithError adds error context to logger fields.
func WithError(err error) []zap.Field {
	if err == nil {
		return []zap.Field{}
	}

	fields := []zap.Field{
		zap.Error(err),
	}

	var serviceErr *errors.ServiceError
	if stderrors.As(err, &serviceErr) {
		fields = append(fields,
			zap.String(FieldErrorType, string(serviceErr.Type)),
			zap.String(FieldErrorCode, serviceErr.Code),
			zap.String(FieldComponent, serviceErr.Component),
			zap.String("operation", serviceErr.Operation),
			zap.String("severity", string(serviceErr.Severity)),
			zap.Int("http_status", serviceErr.HTTPStatus),
		)

		if len(serviceErr.Context) > 0 {
			fields = append(fields, zap.Any("error_context", serviceErr.Context))
		}

		if serviceErr.Severity == errors.SeverityHigh || serviceErr.Severity == errors.SeverityCritical {
			if len(serviceErr.Stack) > 0 {
				fields = append(fields, zap.Strings("stack_trace", serviceErr.Stack))
			}
		}
	}

	return fields
}

// WithRequestContext adds request context to logger fields.
func WithRequestContext(ctx context.Context) []zap.Field {
	fields := []zap.Field{}

	contextKeys := []struct {
		key   loggingContextKey
		field string
	}{
		{loggingContextKeyRequestID, FieldRequestID},
		{loggingContextKeyTraceID, FieldTraceID},
		{loggingContextKeyTransport, FieldTransport},
		{loggingContextKeyMethod, FieldMethod},
		{loggingContextKeyTool, FieldTool},
	}

	for _, ck := range contextKeys {
		if value := extractStringFromContext(ctx, ck.key); value != "" {
			fields = append(fields, zap.String(ck.field, value))
		}
	}

	return fields
}

func extractStringFromContext(ctx context.Context, key loggingContextKey) string {
	if value := ctx.Value(key); value != nil {
		if str, ok := value.(string); ok {
			return str
		}
	}

	return ""
}

// LogError logs an error with full context. Low severity errors are logged as warnings.
func LogError(ctx context.Context, logger *zap.Logger, msg string, err error, additionalFields ...zap.Field) {
	fields := WithError(err)
	fields = append(fields, WithRequestContext(ctx)...)
	fields = append(fields, additionalFields...)

	if ce := logger.Check(getLogLevelForError(err), msg); ce != nil {
		ce.Write(fields...)
	}
}

func getLogLevelForError(err error) zapcore.Level {
	var serviceErr *errors.ServiceError
	if !stderrors.As(err, &serviceErr) {
		return zapcore.ErrorLevel
	}

	switch serviceErr.Severity {
	case errors.SeverityLow:
		return zapcore.WarnLevel
	case errors.SeverityMedium, errors.SeverityHigh, errors.SeverityCritical:
		return zapcore.ErrorLevel
	default:
		return zapcore.ErrorLevel
	}
}

// LogDebug logs debug information with context.
func LogDebug(ctx context.Context, logger *zap.Logger, msg string, additionalFields ...zap.Field) {
	fields := WithRequestContext(ctx)
	fields = append(fields, additionalFields...)
	logger.Debug(msg, fields...)
}
