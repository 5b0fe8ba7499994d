// Package tracing provides OpenTelemetry distributed tracing integration.
package tracing

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/config"
)

const (
	shutdownTimeoutSeconds = 10

	instrumentationName = "github.com/actual-software/weather-mcp"
)

// Tracer wraps the OpenTelemetry tracer provider. The zero value and the
// value returned for disabled tracing are no-ops.
type Tracer struct {
	provider   *sdktrace.TracerProvider
	tracer     trace.Tracer
	config     config.TracingConfig
	logger     *zap.Logger
	shutdownFn func(context.Context) error
}

// InitOTelTracer initializes OpenTelemetry distributed tracing.
func InitOTelTracer(cfg config.TracingConfig, logger *zap.Logger) (*Tracer, error) {
	if !cfg.Enabled {
		logger.Info("OpenTelemetry tracing disabled")

		return NewNoopTracer(logger), nil
	}

	exporter, err := createExporter(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	return NewTracerWithExporter(cfg, exporter, logger)
}

// NewNoopTracer returns a tracer that records nothing.
func NewNoopTracer(logger *zap.Logger) *Tracer {
	return &Tracer{
		logger:     logger,
		shutdownFn: func(context.Context) error { return nil },
	}
}

// NewTracerWithExporter builds a tracer around an already constructed exporter
// and installs it as the global provider.
func NewTracerWithExporter(
	cfg config.TracingConfig,
	exporter sdktrace.SpanExporter,
	logger *zap.Logger,
) (*Tracer, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(createSampler(cfg)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("OpenTelemetry tracing initialized",
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.ServiceVersion),
		zap.String("environment", cfg.Environment),
		zap.String("exporter", cfg.ExporterType),
		zap.String("sampler", cfg.SamplerType),
	)

	return &Tracer{
		provider: tp,
		tracer:   tp.Tracer(instrumentationName),
		config:   cfg,
		logger:   logger,
		shutdownFn: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	}, nil
}

// createExporter creates the trace exporter named by the configuration.
//
//nolint:ireturn // Returns OpenTelemetry interface
func createExporter(cfg config.TracingConfig, logger *zap.Logger) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case config.ExporterOTLP, "":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}

		return otlptracegrpc.New(context.Background(), opts...)

	case config.ExporterZipkin:
		return zipkin.New(cfg.ZipkinEndpoint)

	case config.ExporterStdout:
		// stdout belongs to the stdio transport.
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())

	default:
		logger.Warn("Unknown exporter type, falling back to stdout", zap.String("type", cfg.ExporterType))

		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	}
}

// createSampler creates the appropriate sampler based on configuration.
//
//nolint:ireturn // Returns OpenTelemetry interface
func createSampler(cfg config.TracingConfig) sdktrace.Sampler {
	switch cfg.SamplerType {
	case "always_on", "":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(cfg.SamplerParam)
	default:
		return sdktrace.AlwaysSample()
	}
}

// Enabled reports whether spans are exported.
func (t *Tracer) Enabled() bool {
	return t != nil && t.tracer != nil
}

// StartSpan starts a new span with optional attributes.
//
//nolint:ireturn // Returns OpenTelemetry interface
func (t *Tracer) StartSpan(
	ctx context.Context,
	name string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	if !t.Enabled() {
		return ctx, trace.SpanFromContext(ctx)
	}

	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// HTTPMiddleware creates an HTTP middleware for automatic request tracing.
func (t *Tracer) HTTPMiddleware(next http.Handler) http.Handler {
	if !t.Enabled() {
		return next
	}

	return otelhttp.NewHandler(next, "weather-mcp-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
	)
}

// HTTPClient returns a client with the given timeout whose transport is
// instrumented when tracing is enabled.
func (t *Tracer) HTTPClient(timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}

	if t.Enabled() {
		client.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	return client
}

// RecordError records an error on the span in ctx and marks it failed.
func (t *Tracer) RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace ID from the current span context.
func (t *Tracer) GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}

	return spanCtx.TraceID().String()
}

// Shutdown flushes pending spans and shuts down the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.shutdownFn == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeoutSeconds*time.Second)
	defer cancel()

	if t.logger != nil {
		t.logger.Info("Shutting down OpenTelemetry tracer")
	}

	return t.shutdownFn(shutdownCtx)
}

// ForceFlush exports all ended spans that have not been exported yet.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}

	return t.provider.ForceFlush(ctx)
}
