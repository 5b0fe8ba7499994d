// Package errors provides the error taxonomy shared by the weather server's transports.
// It includes error wrapping, classification, and mapping onto HTTP and JSON-RPC codes.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/actual-software/weather-mcp/pkg/mcp"
)

// ErrorType represents the category of an error.
type ErrorType string

const (
	// Stack capture configuration.
	stackSkipFrames = 2  // Number of stack frames to skip when capturing
	maxStackDepth   = 10 // Maximum stack depth to capture

	// Error types for classification.
	TypeValidation   ErrorType = "VALIDATION"
	TypeNotFound     ErrorType = "NOT_FOUND"
	TypeUnauthorized ErrorType = "UNAUTHORIZED"
	TypeInternal     ErrorType = "INTERNAL"
	TypeTimeout      ErrorType = "TIMEOUT"
	TypeCanceled     ErrorType = "CANCELED"
	TypeUnavailable  ErrorType = "UNAVAILABLE"
	TypeParse        ErrorType = "PARSE"
	TypeMethod       ErrorType = "METHOD_NOT_FOUND"
	TypeRequest      ErrorType = "INVALID_REQUEST"
)

// Severity levels.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// HTTPStatusClientClosedRequest is the nginx convention for client closed request.
const HTTPStatusClientClosedRequest = 499

// ServiceError is the base error type for the weather server.
type ServiceError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Stack      []string               `json:"stack,omitempty"`
	Severity   Severity               `json:"severity"`
	HTTPStatus int                    `json:"http_status,omitempty"`
	Component  string                 `json:"component,omitempty"`
	Operation  string                 `json:"operation,omitempty"`
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	var b strings.Builder

	if e.Component != "" {
		b.WriteString("[")
		b.WriteString(e.Component)
		b.WriteString("] ")
	}

	if e.Operation != "" {
		b.WriteString(e.Operation)
		b.WriteString(": ")
	}

	b.WriteString(string(e.Type))
	b.WriteString(": ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause of the error.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}

	return e.Type == t.Type && e.Code == t.Code
}

// WithContext adds context information to the error.
func (e *ServiceError) WithContext(key string, value interface{}) *ServiceError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}

	e.Context[key] = value

	return e
}

// WithCode sets the machine-readable error code.
func (e *ServiceError) WithCode(code string) *ServiceError {
	e.Code = code

	return e
}

// WithOperation sets the operation that caused the error.
func (e *ServiceError) WithOperation(operation string) *ServiceError {
	e.Operation = operation

	return e
}

// WithComponent sets the component that generated the error.
func (e *ServiceError) WithComponent(component string) *ServiceError {
	e.Component = component

	return e
}

// WithHTTPStatus sets the HTTP status code for the error.
func (e *ServiceError) WithHTTPStatus(status int) *ServiceError {
	e.HTTPStatus = status

	return e
}

// New creates a new ServiceError with stack trace.
func New(errType ErrorType, message string) *ServiceError {
	return &ServiceError{
		Type:     errType,
		Message:  message,
		Stack:    captureStack(stackSkipFrames),
		Severity: getSeverityForType(errType),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, message string) *ServiceError {
	if err == nil {
		return nil
	}

	// Keep the classification of an inner ServiceError
	var se *ServiceError
	if errors.As(err, &se) {
		return &ServiceError{
			Type:       se.Type,
			Message:    message,
			Code:       se.Code,
			Cause:      se,
			Context:    se.Context,
			Stack:      captureStack(stackSkipFrames),
			Severity:   se.Severity,
			HTTPStatus: se.HTTPStatus,
			Component:  se.Component,
			Operation:  se.Operation,
		}
	}

	return &ServiceError{
		Type:     TypeInternal,
		Message:  message,
		Cause:    err,
		Stack:    captureStack(stackSkipFrames),
		Severity: SeverityMedium,
	}
}

// WrapWithType wraps an error with a specific type.
func WrapWithType(err error, errType ErrorType, message string) *ServiceError {
	if err == nil {
		return nil
	}

	return &ServiceError{
		Type:     errType,
		Message:  message,
		Cause:    err,
		Stack:    captureStack(stackSkipFrames),
		Severity: getSeverityForType(errType),
	}
}

// Wrapf wraps an error with formatted message.
func Wrapf(err error, format string, args ...interface{}) *ServiceError {
	if err == nil {
		return nil
	}

	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsType checks if an error is of a specific type.
func IsType(err error, errType ErrorType) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type == errType
	}

	return false
}

// TypeOf returns the classification of err. Context errors are classified
// even when they were never wrapped.
func TypeOf(err error) ErrorType {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return TypeTimeout
	case errors.Is(err, context.Canceled):
		return TypeCanceled
	default:
		return TypeInternal
	}
}

func getErrorTypeStatusMap() map[ErrorType]int {
	return map[ErrorType]int{
		TypeValidation:   http.StatusBadRequest,
		TypeParse:        http.StatusBadRequest,
		TypeRequest:      http.StatusBadRequest,
		TypeUnauthorized: http.StatusUnauthorized,
		TypeNotFound:     http.StatusNotFound,
		TypeMethod:       http.StatusNotFound,
		TypeTimeout:      http.StatusGatewayTimeout,
		TypeUnavailable:  http.StatusServiceUnavailable,
		TypeCanceled:     HTTPStatusClientClosedRequest,
		TypeInternal:     http.StatusInternalServerError,
	}
}

// GetHTTPStatus returns the appropriate HTTP status code for an error.
func GetHTTPStatus(err error) int {
	var se *ServiceError
	if errors.As(err, &se) && se.HTTPStatus > 0 {
		return se.HTTPStatus
	}

	if status, ok := getErrorTypeStatusMap()[TypeOf(err)]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// JSONRPCCode maps an error onto a JSON-RPC 2.0 error code. Everything that is
// not a protocol-level failure is reported as an internal error.
func JSONRPCCode(err error) int {
	switch TypeOf(err) {
	case TypeParse:
		return mcp.ErrorCodeParseError
	case TypeRequest:
		return mcp.ErrorCodeInvalidRequest
	case TypeMethod:
		return mcp.ErrorCodeMethodNotFound
	default:
		return mcp.ErrorCodeInternalError
	}
}

// PublicMessage returns the message chain of err without classification
// prefixes, suitable for clients.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}

	var se *ServiceError
	if !errors.As(err, &se) {
		return err.Error()
	}

	if se.Cause == nil {
		return se.Message
	}

	inner := PublicMessage(se.Cause)
	if inner == "" || inner == se.Message {
		return se.Message
	}

	return se.Message + ": " + inner
}

// Helper functions.

func captureStack(skip int) []string {
	var stack []string

	for i := skip; i < skip+maxStackDepth; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn != nil {
			stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		}
	}

	return stack
}

func getSeverityForType(errType ErrorType) Severity {
	switch errType {
	case TypeInternal:
		return SeverityHigh
	case TypeUnauthorized:
		return SeverityMedium
	case TypeValidation, TypeNotFound, TypeParse, TypeRequest, TypeMethod, TypeCanceled:
		return SeverityLow
	case TypeTimeout, TypeUnavailable:
		return SeverityMedium
	default:
		return SeverityMedium
	}
}

// Convenience functions for creating common errors

func NewNotFoundError(resource string) *ServiceError {
	return New(TypeNotFound, resource+" not found").WithHTTPStatus(http.StatusNotFound)
}

func NewInternalError(message string) *ServiceError {
	return New(TypeInternal, message).WithHTTPStatus(http.StatusInternalServerError)
}

func NewTimeoutError(operation string, cause error) *ServiceError {
	if cause != nil {
		return WrapWithType(cause, TypeTimeout, "operation "+operation+" timed out").
			WithHTTPStatus(http.StatusGatewayTimeout).
			WithOperation(operation)
	}

	return New(TypeTimeout, "operation "+operation+" timed out").
		WithHTTPStatus(http.StatusGatewayTimeout).
		WithOperation(operation)
}
