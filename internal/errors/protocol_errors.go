package errors

import (
	"net/http"
)

// Error codes for JSON-RPC framing.
const (
	ErrCodeParse          = "PROTOCOL_PARSE_ERROR"
	ErrCodeInvalidRequest = "PROTOCOL_INVALID_REQUEST"
	ErrCodeMethodNotFound = "PROTOCOL_METHOD_NOT_FOUND"
	ErrCodeUnknownTool    = "PROTOCOL_UNKNOWN_TOOL"
	ErrCodeUnauthorized   = "PROTOCOL_UNAUTHORIZED"
)

// NewParseError creates an error for inbound bytes that are not valid JSON.
func NewParseError(cause error) *ServiceError {
	return WrapWithType(cause, TypeParse, "Parse error").
		WithComponent("dispatcher").
		WithCode(ErrCodeParse).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewInvalidRequestError creates an error for JSON that is not a request object.
func NewInvalidRequestError(reason string) *ServiceError {
	return New(TypeRequest, "Invalid Request").
		WithComponent("dispatcher").
		WithCode(ErrCodeInvalidRequest).
		WithContext("reason", reason).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewMethodNotFoundError creates an error for an unsupported JSON-RPC method.
func NewMethodNotFoundError(method string) *ServiceError {
	return New(TypeMethod, "Method not found: "+method).
		WithComponent("dispatcher").
		WithCode(ErrCodeMethodNotFound).
		WithContext("method", method)
}

// NewUnknownToolError creates an error for a tools/call naming no registered tool.
func NewUnknownToolError(name string) *ServiceError {
	return New(TypeMethod, "Unknown tool: "+name).
		WithComponent("dispatcher").
		WithCode(ErrCodeUnknownTool).
		WithContext("tool", name).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewAuthError creates an error for a rejected bearer token.
func NewAuthError(reason string) *ServiceError {
	return New(TypeUnauthorized, reason).
		WithComponent("auth").
		WithCode(ErrCodeUnauthorized).
		WithHTTPStatus(http.StatusUnauthorized)
}
