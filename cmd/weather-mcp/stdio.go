package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/config"
	"github.com/actual-software/weather-mcp/internal/dispatcher"
	"github.com/actual-software/weather-mcp/internal/frontends/stdio"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/internal/metrics"
	"github.com/actual-software/weather-mcp/internal/tracing"
)

func stdioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout",
		Long: `Read newline-delimited JSON-RPC requests from stdin and write one response
per line to stdout. With --backend-url the weather tools are answered by a
running weather-mcp server instead of calling OpenWeatherMap directly.`,
		RunE: runStdio,
	}

	cmd.Flags().String("backend-url", "", "Base URL of a weather-mcp server (overrides mcp.backend_url)")

	return cmd
}

func runStdio(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	backendURL, err := cmd.Flags().GetString("backend-url")
	if err != nil {
		return fmt.Errorf("failed to get backend-url flag: %w", err)
	}

	if backendURL == "" {
		backendURL = cfg.MCP.BackendURL
	}

	tracer, err := tracing.InitOTelTracer(cfg.Tracing, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer shutdownTracer(tracer, logger)

	registry := metrics.InitializeMetricsRegistry()

	backend, err := stdioBackend(cfg, backendURL, tracer, registry, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frontend := stdio.CreateStdioFrontend(
		newDispatcher(cfg, backend, tracer, registry, logger),
		cmd.InOrStdin(),
		cmd.OutOrStdout(),
		cfg.MCP.ToolTimeout,
		logger,
	)

	logger.Info("Weather MCP Server running on stdio", zap.String("backend", backendName(backendURL)))

	return frontend.Serve(ctx)
}

// stdioBackend answers tool calls through a remote server when backendURL is
// set and through the OpenWeatherMap provider otherwise.
func stdioBackend(
	cfg *config.Config,
	backendURL string,
	tracer *tracing.Tracer,
	registry *metrics.Registry,
	logger *zap.Logger,
) (dispatcher.Backend, error) {
	if backendURL != "" {
		return dispatcher.NewHTTPBackend(backendURL, cfg.MCP.ToolTimeout, tracer, logger), nil
	}

	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	return newWeatherService(cfg, tracer, registry, logger), nil
}

func backendName(backendURL string) string {
	if backendURL == "" {
		return "openweathermap"
	}

	return backendURL
}
