// Package metrics provides Prometheus metrics collection and reporting for the weather server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// unknownValue is used when a metric label value is not available.
	unknownValue = "unknown"

	namespace = "weather_mcp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Tool metrics
	ToolCallsTotal *prometheus.CounterVec

	// Upstream metrics
	UpstreamRequestsTotal *prometheus.CounterVec
	UpstreamDuration      *prometheus.HistogramVec

	// WebSocket metrics
	WebSocketConnectionsActive prometheus.Gauge
	WebSocketMessagesTotal     *prometheus.CounterVec

	// Error metrics
	ErrorsTotal        *prometheus.CounterVec
	ErrorsByHTTPStatus *prometheus.CounterVec
	AuthFailuresTotal  *prometheus.CounterVec
}

// createRequestMetrics creates request-related metrics.
// nolint:ireturn // Prometheus interfaces
func createRequestMetrics(
	factory promauto.Factory,
) (*prometheus.CounterVec, *prometheus.HistogramVec, prometheus.Gauge) {
	reqTotal := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of requests by transport, method and status",
	}, []string{"transport", "method", "status"})
	reqDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"transport", "method"})
	reqInFlight := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	})

	return reqTotal, reqDuration, reqInFlight
}

// createUpstreamMetrics creates metrics for calls to the weather provider.
func createUpstreamMetrics(factory promauto.Factory) (*prometheus.CounterVec, *prometheus.HistogramVec) {
	upstreamTotal := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of upstream calls by endpoint and status",
	}, []string{"endpoint", "status"})
	upstreamDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_duration_seconds",
		Help:      "Upstream call duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	return upstreamTotal, upstreamDuration
}

// createWebSocketMetrics creates WebSocket transport metrics.
// nolint:ireturn // Prometheus interfaces
func createWebSocketMetrics(factory promauto.Factory) (prometheus.Gauge, *prometheus.CounterVec) {
	wsActive := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections_active",
		Help:      "Number of open WebSocket connections",
	})
	wsMessages := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "websocket_messages_total",
		Help:      "Total WebSocket messages by direction",
	}, []string{"direction"})

	return wsActive, wsMessages
}

type errorMetricsSet struct {
	total        *prometheus.CounterVec
	byHTTPStatus *prometheus.CounterVec
	authFailures *prometheus.CounterVec
}

func createErrorMetrics(factory promauto.Factory) errorMetricsSet {
	return errorMetricsSet{
		total: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total errors by type and component",
		}, []string{"type", "component"}),
		byHTTPStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_by_http_status_total",
			Help:      "Total errors by HTTP status code and class",
		}, []string{"status_code", "status_class"}),
		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total rejected bearer tokens by reason",
		}, []string{"reason"}),
	}
}

// InitializeMetricsRegistry creates and configures a metrics collection registry.
func InitializeMetricsRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	reqTotal, reqDuration, reqInFlight := createRequestMetrics(factory)
	upstreamTotal, upstreamDuration := createUpstreamMetrics(factory)
	wsActive, wsMessages := createWebSocketMetrics(factory)
	errorMetrics := createErrorMetrics(factory)

	toolCalls := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_calls_total",
		Help:      "Total tools/call invocations by tool and status",
	}, []string{"tool", "status"})

	return &Registry{
		registry:                   reg,
		RequestsTotal:              reqTotal,
		RequestDuration:            reqDuration,
		RequestsInFlight:           reqInFlight,
		ToolCallsTotal:             toolCalls,
		UpstreamRequestsTotal:      upstreamTotal,
		UpstreamDuration:           upstreamDuration,
		WebSocketConnectionsActive: wsActive,
		WebSocketMessagesTotal:     wsMessages,
		ErrorsTotal:                errorMetrics.total,
		ErrorsByHTTPStatus:         errorMetrics.byHTTPStatus,
		AuthFailuresTotal:          errorMetrics.authFailures,
	}
}

// Gatherer exposes the underlying registry for scraping and tests.
//
//nolint:ireturn // Prometheus interface
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns the /metrics HTTP handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a completed request.
func (r *Registry) RecordRequest(transport, method, status string, duration time.Duration) {
	if method == "" {
		method = unknownValue
	}

	r.RequestsTotal.WithLabelValues(transport, method, status).Inc()
	r.RequestDuration.WithLabelValues(transport, method).Observe(duration.Seconds())
}

// IncrementRequestsInFlight increments in-flight requests.
func (r *Registry) IncrementRequestsInFlight() {
	r.RequestsInFlight.Inc()
}

// DecrementRequestsInFlight decrements in-flight requests.
func (r *Registry) DecrementRequestsInFlight() {
	r.RequestsInFlight.Dec()
}

// IncrementToolCalls increments the tools/call counter.
func (r *Registry) IncrementToolCalls(tool, status string) {
	r.ToolCallsTotal.WithLabelValues(tool, status).Inc()
}

// RecordUpstream records one call to the weather provider or geocoder.
func (r *Registry) RecordUpstream(endpoint, status string, duration time.Duration) {
	r.UpstreamRequestsTotal.WithLabelValues(endpoint, status).Inc()
	r.UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncrementWebSocketConnections increments the open WebSocket gauge.
func (r *Registry) IncrementWebSocketConnections() {
	r.WebSocketConnectionsActive.Inc()
}

// DecrementWebSocketConnections decrements the open WebSocket gauge.
func (r *Registry) DecrementWebSocketConnections() {
	r.WebSocketConnectionsActive.Dec()
}

// IncrementWebSocketMessages increments WebSocket message count.
func (r *Registry) IncrementWebSocketMessages(direction string) {
	r.WebSocketMessagesTotal.WithLabelValues(direction).Inc()
}

// IncrementErrors increments error count by type and component.
func (r *Registry) IncrementErrors(errorType, component string) {
	if component == "" {
		component = unknownValue
	}

	r.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// IncrementErrorsByHTTPStatus increments errors by HTTP status code.
func (r *Registry) IncrementErrorsByHTTPStatus(statusCode int) {
	r.ErrorsByHTTPStatus.WithLabelValues(strconv.Itoa(statusCode), getStatusClass(statusCode)).Inc()
}

// IncrementAuthFailures increments authentication failures.
func (r *Registry) IncrementAuthFailures(reason string) {
	r.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// getStatusClass returns the HTTP status class (2xx, 3xx, 4xx, 5xx).
func getStatusClass(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	default:
		return unknownValue
	}
}
