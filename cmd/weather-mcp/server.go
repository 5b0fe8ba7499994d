package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/auth"
	"github.com/actual-software/weather-mcp/internal/config"
	"github.com/actual-software/weather-mcp/internal/dispatcher"
	httpfrontend "github.com/actual-software/weather-mcp/internal/frontends/http"
	"github.com/actual-software/weather-mcp/internal/frontends/websocket"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/internal/metrics"
	"github.com/actual-software/weather-mcp/internal/tracing"
	"github.com/actual-software/weather-mcp/internal/weather"
)

const tracerShutdownTimeout = 5 * time.Second

// Components holds everything the transports share.
type Components struct {
	Tracer       *tracing.Tracer
	Metrics      *metrics.Registry
	Service      *weather.Service
	Dispatcher   *dispatcher.Dispatcher
	AuthProvider auth.Provider
}

func serverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the HTTP server",
		Long: `Serve /weather, /forecast, /tools/call and the MCP endpoints (/mcp and
/mcp/ws) until interrupted.`,
		RunE: runServer,
	}

	cmd.Flags().String("host", "", "Host to bind (overrides server.host)")
	cmd.Flags().Int("port", 0, "Port to bind (overrides server.port)")

	return cmd
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	if err := applyServerFlags(cmd, cfg); err != nil {
		return err
	}

	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}

	ws := websocket.CreateWebSocketFrontend(
		websocket.Config{
			AllowedOrigin:  cfg.Server.AllowedOrigin,
			MaxMessageSize: cfg.Server.MaxBodySize,
		},
		components.Dispatcher,
		components.AuthProvider,
		components.Metrics,
		logger,
	)

	frontend := httpfrontend.CreateHTTPFrontend(httpfrontend.Options{
		Config:         cfg.Server,
		MetricsPath:    cfg.Metrics.Path,
		DisableMetrics: !cfg.Metrics.Enabled,
		Version:        serverVersion(),
		DefaultUnits:   cfg.Weather.Units,
		Backend:        components.Service,
		Dispatcher:     components.Dispatcher,
		Auth:           components.AuthProvider,
		WebSocket:      ws,
		OnShutdown:     ws.Close,
		Metrics:        components.Metrics,
		Tracer:         components.Tracer,
		Logger:         logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := frontend.Start(ctx); err != nil {
		shutdownTracer(components.Tracer, logger)

		return err
	}

	logger.Info("Weather MCP Server started",
		zap.String("version", Version),
		zap.String("address", frontend.Addr()),
		zap.Bool("auth_enabled", components.AuthProvider != nil))

	waitForShutdown(logger)

	logger.Info("Starting graceful shutdown")

	if err := frontend.Stop(ctx); err != nil {
		logger.Error("Error shutting down http frontend", zap.Error(err))
	}

	shutdownTracer(components.Tracer, logger)

	logger.Info("Weather MCP Server shutdown complete")

	return nil
}

func applyServerFlags(cmd *cobra.Command, cfg *config.Config) error {
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("failed to get host flag: %w", err)
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("failed to get port flag: %w", err)
	}

	if host != "" {
		cfg.Server.Host = host
	}

	if port != 0 {
		cfg.Server.Port = port
	}

	return config.Validate(cfg)
}

// initializeComponents builds the in-process weather service and the
// dispatcher on top of it.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	logger.Info("Initializing weather components")

	tracer, err := tracing.InitOTelTracer(cfg.Tracing, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	registry := metrics.InitializeMetricsRegistry()

	service := newWeatherService(cfg, tracer, registry, logger)

	var provider auth.Provider

	if cfg.Auth.Enabled {
		jwtProvider, err := auth.NewJWTProvider(cfg.Auth.JWT, logger)
		if err != nil {
			shutdownTracer(tracer, logger)

			return nil, fmt.Errorf("failed to initialize auth: %w", err)
		}

		provider = jwtProvider
	}

	return &Components{
		Tracer:       tracer,
		Metrics:      registry,
		Service:      service,
		Dispatcher:   newDispatcher(cfg, service, tracer, registry, logger),
		AuthProvider: provider,
	}, nil
}

func newWeatherService(
	cfg *config.Config,
	tracer *tracing.Tracer,
	registry *metrics.Registry,
	logger *zap.Logger,
) *weather.Service {
	return weather.NewService(
		weather.NewClient(cfg.Weather, tracer, registry, logger),
		weather.NewGeocoder(cfg.Weather, tracer, registry, logger),
		cfg.Weather.Units,
		cfg.Weather.Lang,
		logger,
	)
}

func newDispatcher(
	cfg *config.Config,
	backend dispatcher.Backend,
	tracer *tracing.Tracer,
	registry *metrics.Registry,
	logger *zap.Logger,
) *dispatcher.Dispatcher {
	return dispatcher.New(backend, dispatcher.Options{
		ServerName:    cfg.MCP.ServerName,
		ServerVersion: serverVersion(),
		ToolTimeout:   cfg.MCP.ToolTimeout,
		DefaultUnits:  cfg.Weather.Units,
		Logger:        logger,
		Metrics:       registry,
		Tracer:        tracer,
	})
}

// serverVersion is the version advertised to MCP clients and on /health.
func serverVersion() string {
	return strings.TrimPrefix(Version, "v")
}

func waitForShutdown(logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
}

func shutdownTracer(tracer *tracing.Tracer, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()

	if err := tracer.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down tracer", zap.Error(err))
	}
}
