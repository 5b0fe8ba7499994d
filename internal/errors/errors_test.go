package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actual-software/weather-mcp/internal/metrics"
	"github.com/actual-software/weather-mcp/pkg/mcp"
)

func TestServiceErrorString(t *testing.T) {
	err := New(TypeUnavailable, "provider down").
		WithComponent("upstream").
		WithOperation("onecall")

	assert.Equal(t, "[upstream] onecall: UNAVAILABLE: provider down", err.Error())

	wrapped := WrapWithType(fmt.Errorf("dial tcp: refused"), TypeUnavailable, "request failed")
	assert.Equal(t, "UNAVAILABLE: request failed: dial tcp: refused", wrapped.Error())
}

func TestWrapPreservesClassification(t *testing.T) {
	inner := NewInvalidLatitudeError(91)
	outer := Wrap(inner, "get_weather failed")

	require.NotNil(t, outer)
	assert.Equal(t, TypeValidation, outer.Type)
	assert.Equal(t, ErrCodeInvalidLatitude, outer.Code)
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(outer))
	assert.True(t, errors.Is(outer, &ServiceError{Type: TypeValidation, Code: ErrCodeInvalidLatitude}))

	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
	assert.Equal(t, TypeInternal, Wrap(fmt.Errorf("plain"), "context").Type)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{name: "service error", err: NewNotFoundError("city"), expected: TypeNotFound},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), expected: TypeTimeout},
		{name: "canceled", err: context.Canceled, expected: TypeCanceled},
		{name: "plain", err: fmt.Errorf("boom"), expected: TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeOf(tt.err))
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: NewInvalidLongitudeError(200), expected: http.StatusBadRequest},
		{name: "upstream unauthorized", err: NewUpstreamStatusError("onecall", 401, ""), expected: http.StatusBadGateway},
		{name: "upstream not found", err: NewUpstreamStatusError("onecall", 404, ""), expected: http.StatusBadGateway},
		{name: "upstream timeout", err: NewUpstreamRequestError("onecall", context.DeadlineExceeded), expected: http.StatusGatewayTimeout},
		{name: "upstream network", err: NewUpstreamRequestError("onecall", fmt.Errorf("refused")), expected: http.StatusServiceUnavailable},
		{name: "unknown tool", err: NewUnknownToolError("nope"), expected: http.StatusBadRequest},
		{name: "method by type", err: NewMethodNotFoundError("nope"), expected: http.StatusNotFound},
		{name: "auth", err: NewAuthError("missing token"), expected: http.StatusUnauthorized},
		{name: "plain", err: fmt.Errorf("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.err))
		})
	}
}

func TestJSONRPCCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "parse", err: NewParseError(fmt.Errorf("unexpected EOF")), expected: mcp.ErrorCodeParseError},
		{name: "invalid request", err: NewInvalidRequestError("missing method"), expected: mcp.ErrorCodeInvalidRequest},
		{name: "method", err: NewMethodNotFoundError("foo"), expected: mcp.ErrorCodeMethodNotFound},
		{name: "unknown tool", err: NewUnknownToolError("foo"), expected: mcp.ErrorCodeMethodNotFound},
		{name: "validation", err: NewLocationNotFoundError("Atlantis"), expected: mcp.ErrorCodeInternalError},
		{name: "upstream", err: NewUpstreamStatusError("onecall", 500, "oops"), expected: mcp.ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JSONRPCCode(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "", PublicMessage(nil))
	assert.Equal(t, "invalid API key", PublicMessage(NewUpstreamStatusError("onecall", 401, "")))
	assert.Equal(t, "location not found", PublicMessage(NewUpstreamStatusError("onecall", 404, "")))
	assert.Equal(t, "API error (status 500): oops", PublicMessage(NewUpstreamStatusError("onecall", 500, "oops")))
	assert.Equal(t, "Location 'Atlantis' not found", PublicMessage(NewLocationNotFoundError("Atlantis")))
	assert.Equal(t,
		"invalid latitude: 91. Must be between -90 and 90",
		PublicMessage(Wrap(NewInvalidLatitudeError(91), "invalid latitude: 91. Must be between -90 and 90")))
	assert.Equal(t,
		"weather provider request failed: dial tcp: refused",
		PublicMessage(NewUpstreamRequestError("onecall", fmt.Errorf("dial tcp: refused"))))
}

func TestUpstreamStatusBodyTruncated(t *testing.T) {
	body := make([]byte, 1000)
	for i := range body {
		body[i] = 'x'
	}

	err := NewUpstreamStatusError("onecall", http.StatusTooManyRequests, string(body))

	assert.Equal(t, TypeUnavailable, err.Type)
	assert.Equal(t, 429, err.Context["status_code"])
	assert.LessOrEqual(t, len(err.Message), maxBodyInMessage+len("API error (status 429): "))
}

func TestRecordError(t *testing.T) {
	reg := metrics.InitializeMetricsRegistry()

	RecordError(NewUpstreamStatusError("onecall", 401, ""), reg)
	RecordError(fmt.Errorf("wrapped: %w", context.DeadlineExceeded), reg)
	RecordError(nil, reg)
	RecordError(NewInternalError("boom"), nil)

	assert.InDelta(t, 1, testutil.ToFloat64(reg.ErrorsTotal.WithLabelValues("UNAUTHORIZED", "upstream")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(reg.ErrorsByHTTPStatus.WithLabelValues("502", "5xx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(reg.ErrorsTotal.WithLabelValues("TIMEOUT", unknownValue)), 0)
}
