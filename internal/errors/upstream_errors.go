package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes for calls to the weather provider and HTTP backends.
const (
	ErrCodeUpstreamUnauthorized = "UPSTREAM_UNAUTHORIZED"
	ErrCodeUpstreamNotFound     = "UPSTREAM_NOT_FOUND"
	ErrCodeUpstreamStatus       = "UPSTREAM_BAD_STATUS"
	ErrCodeUpstreamRequest      = "UPSTREAM_REQUEST_FAILED"
	ErrCodeUpstreamTimeout      = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamDecode       = "UPSTREAM_DECODE_FAILED"
)

const (
	componentUpstream = "upstream"
	maxBodyInMessage  = 256
)

// NewUpstreamStatusError classifies a non-2xx provider response. 401 and 404
// get their own messages; everything else reports the status and body.
func NewUpstreamStatusError(operation string, status int, body string) *ServiceError {
	var err *ServiceError

	switch status {
	case http.StatusUnauthorized:
		err = New(TypeUnauthorized, "invalid API key").WithCode(ErrCodeUpstreamUnauthorized)
	case http.StatusNotFound:
		err = New(TypeNotFound, "location not found").WithCode(ErrCodeUpstreamNotFound)
	default:
		if len(body) > maxBodyInMessage {
			body = body[:maxBodyInMessage]
		}

		err = New(TypeUnavailable, fmt.Sprintf("API error (status %d): %s", status, body)).
			WithCode(ErrCodeUpstreamStatus)
	}

	return err.
		WithComponent(componentUpstream).
		WithOperation(operation).
		WithContext("status_code", status).
		WithHTTPStatus(http.StatusBadGateway)
}

// NewUpstreamRequestError classifies a transport-level failure.
func NewUpstreamRequestError(operation string, cause error) *ServiceError {
	if errors.Is(cause, context.DeadlineExceeded) {
		return NewTimeoutError(operation, cause).
			WithComponent(componentUpstream).
			WithCode(ErrCodeUpstreamTimeout)
	}

	if errors.Is(cause, context.Canceled) {
		return WrapWithType(cause, TypeCanceled, "request canceled").
			WithComponent(componentUpstream).
			WithOperation(operation).
			WithHTTPStatus(HTTPStatusClientClosedRequest)
	}

	return WrapWithType(cause, TypeUnavailable, "weather provider request failed").
		WithComponent(componentUpstream).
		WithOperation(operation).
		WithCode(ErrCodeUpstreamRequest).
		WithHTTPStatus(http.StatusServiceUnavailable)
}

// NewUpstreamDecodeError reports a provider body that is not the expected JSON.
func NewUpstreamDecodeError(operation string, cause error) *ServiceError {
	return WrapWithType(cause, TypeInternal, "invalid response from weather provider").
		WithComponent(componentUpstream).
		WithOperation(operation).
		WithCode(ErrCodeUpstreamDecode).
		WithHTTPStatus(http.StatusBadGateway)
}

// NewBackendStatusError classifies a failed response from a weather-mcp HTTP
// backend. Client errors keep their message so validation failures read the
// same as they would in-process.
func NewBackendStatusError(status int, message string) *ServiceError {
	var err *ServiceError

	switch {
	case status == http.StatusBadRequest:
		err = New(TypeValidation, message).WithHTTPStatus(http.StatusBadRequest)
	case status == http.StatusUnauthorized:
		err = New(TypeUnauthorized, message).WithHTTPStatus(http.StatusBadGateway)
	case status == http.StatusGatewayTimeout:
		err = New(TypeTimeout, message).WithHTTPStatus(http.StatusGatewayTimeout)
	default:
		err = New(TypeUnavailable, fmt.Sprintf("backend error (status %d): %s", status, message)).
			WithHTTPStatus(http.StatusBadGateway)
	}

	return err.
		WithComponent("backend").
		WithCode(ErrCodeUpstreamStatus).
		WithContext("status_code", status)
}
