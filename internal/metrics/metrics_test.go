package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeMetricsRegistry(t *testing.T) {
	t.Parallel()

	reg := InitializeMetricsRegistry()
	require.NotNil(t, reg)

	metricChecks := []struct {
		name   string
		metric interface{}
	}{
		{"RequestsTotal", reg.RequestsTotal},
		{"RequestDuration", reg.RequestDuration},
		{"RequestsInFlight", reg.RequestsInFlight},
		{"ToolCallsTotal", reg.ToolCallsTotal},
		{"UpstreamRequestsTotal", reg.UpstreamRequestsTotal},
		{"UpstreamDuration", reg.UpstreamDuration},
		{"WebSocketConnectionsActive", reg.WebSocketConnectionsActive},
		{"WebSocketMessagesTotal", reg.WebSocketMessagesTotal},
		{"ErrorsTotal", reg.ErrorsTotal},
		{"ErrorsByHTTPStatus", reg.ErrorsByHTTPStatus},
		{"AuthFailuresTotal", reg.AuthFailuresTotal},
	}

	for _, check := range metricChecks {
		assert.NotNil(t, check.metric, "%s not initialized", check.name)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	t.Parallel()

	first := InitializeMetricsRegistry()
	second := InitializeMetricsRegistry()

	first.IncrementToolCalls("get_weather", "success")

	assert.InDelta(t, 1, testutil.ToFloat64(first.ToolCallsTotal.WithLabelValues("get_weather", "success")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(second.ToolCallsTotal.WithLabelValues("get_weather", "success")), 0)
}

func TestRecordRequest(t *testing.T) {
	t.Parallel()

	reg := InitializeMetricsRegistry()

	reg.RecordRequest("http", "tools/call", "success", 25*time.Millisecond)
	reg.RecordRequest("http", "tools/call", "success", 35*time.Millisecond)
	reg.RecordRequest("stdio", "", "error", time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("http", "tools/call", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("stdio", unknownValue, "error")), 0)

	families, err := reg.Gatherer().Gather()
	require.NoError(t, err)

	histogram := findMetricFamily(families, "weather_mcp_request_duration_seconds")
	require.NotNil(t, histogram)
	assert.Equal(t, dto.MetricType_HISTOGRAM, histogram.GetType())

	var samples uint64
	for _, m := range histogram.GetMetric() {
		samples += m.GetHistogram().GetSampleCount()
	}

	assert.Equal(t, uint64(3), samples)
}

func TestInFlightGauge(t *testing.T) {
	t.Parallel()

	reg := InitializeMetricsRegistry()

	reg.IncrementRequestsInFlight()
	reg.IncrementRequestsInFlight()
	reg.DecrementRequestsInFlight()

	assert.InDelta(t, 1, testutil.ToFloat64(reg.RequestsInFlight), 0)
}

func TestErrorMetrics(t *testing.T) {
	t.Parallel()

	reg := InitializeMetricsRegistry()

	reg.IncrementErrors("VALIDATION", "")
	reg.IncrementErrorsByHTTPStatus(http.StatusBadGateway)
	reg.IncrementAuthFailures("expired")

	assert.InDelta(t, 1, testutil.ToFloat64(reg.ErrorsTotal.WithLabelValues("VALIDATION", unknownValue)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(reg.ErrorsByHTTPStatus.WithLabelValues("502", "5xx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(reg.AuthFailuresTotal.WithLabelValues("expired")), 0)
}

func TestGetStatusClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   int
		expected string
	}{
		{http.StatusOK, "2xx"},
		{http.StatusNoContent, "2xx"},
		{http.StatusFound, "3xx"},
		{http.StatusBadRequest, "4xx"},
		{http.StatusGatewayTimeout, "5xx"},
		{99, unknownValue},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, getStatusClass(tt.status))
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	reg := InitializeMetricsRegistry()
	reg.RecordUpstream("onecall", "success", 100*time.Millisecond)
	reg.IncrementWebSocketMessages("inbound")

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `weather_mcp_upstream_requests_total{endpoint="onecall",status="success"} 1`)
	assert.Contains(t, string(body), `weather_mcp_websocket_messages_total{direction="inbound"} 1`)
}

func findMetricFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}

	return nil
}
