package weather

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/internal/metrics"
	"github.com/actual-software/weather-mcp/internal/tracing"
)

const maxResponseSize = 4 << 20

// upstream performs instrumented GET requests against the provider.
type upstream struct {
	httpClient *http.Client
	tracer     *tracing.Tracer
	metrics    *metrics.Registry
	logger     *zap.Logger
}

func newUpstream(timeout time.Duration, tracer *tracing.Tracer, reg *metrics.Registry, logger *zap.Logger) *upstream {
	if tracer == nil {
		tracer = tracing.NewNoopTracer(logger)
	}

	if reg == nil {
		reg = metrics.InitializeMetricsRegistry()
	}

	return &upstream{
		httpClient: tracer.HTTPClient(timeout),
		tracer:     tracer,
		metrics:    reg,
		logger:     logger,
	}
}

// get issues GET base?params and returns the body of a 2xx response.
// endpoint names the call in spans, metrics and errors.
func (u *upstream) get(ctx context.Context, endpoint, base string, params url.Values) ([]byte, error) {
	ctx, span := u.tracer.StartSpan(ctx, "weather."+endpoint,
		attribute.String("weather.endpoint", endpoint))
	defer span.End()

	start := time.Now()
	status := "error"

	defer func() {
		u.metrics.RecordUpstream(endpoint, status, time.Since(start))
	}()

	body, code, err := u.do(ctx, endpoint, base, params)
	if err != nil {
		u.tracer.RecordError(ctx, err)
		errors.RecordError(err, u.metrics)
		logging.LogError(ctx, u.logger, "Upstream request failed", err,
			zap.String(logging.FieldEndpoint, endpoint),
			zap.Int(logging.FieldStatusCode, code),
		)

		return nil, err
	}

	status = "success"
	span.SetAttributes(attribute.Int("http.status_code", code))

	return body, nil
}

func (u *upstream) do(ctx context.Context, endpoint, base string, params url.Values) ([]byte, int, error) {
	target, err := url.Parse(base)
	if err != nil {
		return nil, 0, errors.WrapWithType(err, errors.TypeInternal, "invalid provider URL").
			WithComponent("upstream").
			WithOperation(endpoint)
	}

	target.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, 0, errors.WrapWithType(err, errors.TypeInternal, "failed to build provider request").
			WithComponent("upstream").
			WithOperation(endpoint)
	}

	req.Header.Set("Accept", "application/json")

	logging.LogDebug(ctx, u.logger, "Calling weather provider",
		zap.String(logging.FieldEndpoint, endpoint),
		zap.String(logging.FieldURL, redactedURL(target)),
	)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.NewUpstreamRequestError(endpoint, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, errors.NewUpstreamRequestError(endpoint, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, resp.StatusCode, errors.NewUpstreamStatusError(endpoint, resp.StatusCode, string(body))
	}

	return body, resp.StatusCode, nil
}

func redactedURL(u *url.URL) string {
	clone := *u
	q := clone.Query()

	if q.Has("appid") {
		q.Set("appid", "REDACTED")
	}

	clone.RawQuery = q.Encode()

	return clone.String()
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
