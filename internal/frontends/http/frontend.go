// Package http serves the REST endpoints, the JSON-RPC endpoint and the
// WebSocket upgrade on one gorilla/mux router.
package http

import (
	"context"
	"fmt"
	"net"
	nethttp "net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/auth"
	"github.com/actual-software/weather-mcp/internal/config"
	"github.com/actual-software/weather-mcp/internal/dispatcher"
	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/internal/metrics"
	"github.com/actual-software/weather-mcp/internal/tracing"
	"github.com/actual-software/weather-mcp/internal/weather"
)

const (
	transportName = "http"

	defaultShutdownTimeout = 30 * time.Second
	defaultMetricsPath     = "/metrics"
)

// Options wires a Frontend.
type Options struct {
	Config       config.ServerConfig
	MetricsPath  string
	Version      string
	DefaultUnits string

	// DisableMetrics leaves the exposition endpoint unmounted.
	DisableMetrics bool

	Backend    dispatcher.Backend
	Dispatcher *dispatcher.Dispatcher
	// Auth guards /mcp when non-nil.
	Auth auth.Provider
	// WebSocket is mounted on /mcp/ws when non-nil.
	WebSocket nethttp.Handler
	// OnShutdown runs when the server begins shutting down.
	OnShutdown func()

	Metrics *metrics.Registry
	Tracer  *tracing.Tracer
	Logger  *zap.Logger
}

// Frontend is the HTTP server.
type Frontend struct {
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Registry
	tracer  *tracing.Tracer
	router  *mux.Router
	handler nethttp.Handler

	mu       sync.Mutex
	server   *nethttp.Server
	listener net.Listener
	running  bool
	done     chan struct{}
}

// CreateHTTPFrontend builds the router and middleware chain.
func CreateHTTPFrontend(opts Options) *Frontend {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if opts.Metrics == nil {
		opts.Metrics = metrics.InitializeMetricsRegistry()
	}

	if opts.Tracer == nil {
		opts.Tracer = tracing.NewNoopTracer(opts.Logger)
	}

	if opts.DefaultUnits == "" {
		opts.DefaultUnits = weather.DefaultUnits
	}

	if opts.Config.ShutdownTimeout <= 0 {
		opts.Config.ShutdownTimeout = defaultShutdownTimeout
	}

	if opts.Config.AllowedOrigin == "" {
		opts.Config.AllowedOrigin = "*"
	}

	f := &Frontend{
		opts:    opts,
		logger:  opts.Logger.With(zap.String(logging.FieldTransport, transportName)),
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}

	f.router = f.routes()
	f.handler = f.requestIDMiddleware(f.corsMiddleware(f.tracer.HTTPMiddleware(f.metricsMiddleware(f.router))))

	return f
}

func (f *Frontend) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", f.handleRoot).Methods(nethttp.MethodGet)
	r.HandleFunc("/health", f.handleHealth).Methods(nethttp.MethodGet)
	r.HandleFunc("/weather", f.handleWeather).Methods(nethttp.MethodGet, nethttp.MethodPost)
	r.HandleFunc("/forecast", f.handleForecast).Methods(nethttp.MethodGet, nethttp.MethodPost)
	r.HandleFunc("/tools/call", f.handleToolCall).Methods(nethttp.MethodPost)
	r.HandleFunc("/mcp", f.handleMCP).Methods(nethttp.MethodPost)

	if f.opts.WebSocket != nil {
		r.Handle("/mcp/ws", f.opts.WebSocket).Methods(nethttp.MethodGet)
	}

	if !f.opts.DisableMetrics {
		path := f.opts.MetricsPath
		if path == "" {
			path = defaultMetricsPath
		}

		r.Handle(path, f.metrics.Handler()).Methods(nethttp.MethodGet)
	}

	r.NotFoundHandler = nethttp.HandlerFunc(func(w nethttp.ResponseWriter, req *nethttp.Request) {
		f.writeError(w, req, errors.NewNotFoundError("endpoint "+req.URL.Path))
	})
	r.MethodNotAllowedHandler = nethttp.HandlerFunc(func(w nethttp.ResponseWriter, req *nethttp.Request) {
		f.writeError(w, req, errors.New(errors.TypeRequest, "method not allowed").
			WithHTTPStatus(nethttp.StatusMethodNotAllowed))
	})

	return r
}

// Handler returns the full middleware chain.
func (f *Frontend) Handler() nethttp.Handler {
	return f.handler
}

// Start binds the listener and serves in the background. Bind errors are
// returned directly.
func (f *Frontend) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return fmt.Errorf("http frontend already running")
	}

	cfg := f.opts.Config
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr).WithComponent(transportName)
	}

	f.server = &nethttp.Server{
		Handler:      f.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	if f.opts.OnShutdown != nil {
		f.server.RegisterOnShutdown(f.opts.OnShutdown)
	}

	f.listener = listener
	f.done = make(chan struct{})
	f.running = true

	go func(server *nethttp.Server, done chan struct{}) {
		defer close(done)

		if err := server.Serve(listener); err != nil && err != nethttp.ErrServerClosed {
			f.logger.Error("server error", zap.Error(err))
		}
	}(f.server, f.done)

	f.logger.Info("http frontend started", zap.String("address", listener.Addr().String()))

	return nil
}

// Addr returns the bound address, or an empty string before Start.
func (f *Frontend) Addr() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listener == nil {
		return ""
	}

	return f.listener.Addr().String()
}

// Stop drains in-flight requests within the configured shutdown timeout.
func (f *Frontend) Stop(ctx context.Context) error {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()

		return nil
	}

	f.running = false
	server, done := f.server, f.done
	f.mu.Unlock()

	f.logger.Info("stopping http frontend")

	shutdownCtx, cancel := context.WithTimeout(ctx, f.opts.Config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		f.logger.Warn("http frontend shutdown timeout", zap.Error(err))
		_ = server.Close()
	}

	<-done
	f.logger.Info("http frontend stopped gracefully")

	return nil
}
