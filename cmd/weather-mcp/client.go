package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actual-software/weather-mcp/internal/client"
	"github.com/actual-software/weather-mcp/internal/config"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/internal/tracing"
	"github.com/actual-software/weather-mcp/internal/weather"
)

type clientParams struct {
	latitude  float64
	longitude float64
	host      string
	port      int
	units     string
}

func clientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Fetch current weather from a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClient(cmd, false)
		},
	}

	addClientFlags(cmd)

	return cmd
}

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Fetch the forecast from a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClient(cmd, true)
		},
	}

	addClientFlags(cmd)

	return cmd
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", 0, "Latitude coordinate (-90 to 90)")
	cmd.Flags().Float64("lon", 0, "Longitude coordinate (-180 to 180)")
	cmd.Flags().String("host", "", "Server host to connect to (overrides client.host)")
	cmd.Flags().Int("port", 0, "Server port to connect to (overrides client.port)")
	cmd.Flags().String("units", weather.DefaultUnits, "Units: metric, imperial or standard")

	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
}

func parseClientParams(cmd *cobra.Command, cfg *config.Config) (*clientParams, error) {
	latitude, err := cmd.Flags().GetFloat64("lat")
	if err != nil {
		return nil, fmt.Errorf("failed to get lat flag: %w", err)
	}

	longitude, err := cmd.Flags().GetFloat64("lon")
	if err != nil {
		return nil, fmt.Errorf("failed to get lon flag: %w", err)
	}

	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return nil, fmt.Errorf("failed to get host flag: %w", err)
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return nil, fmt.Errorf("failed to get port flag: %w", err)
	}

	units, err := cmd.Flags().GetString("units")
	if err != nil {
		return nil, fmt.Errorf("failed to get units flag: %w", err)
	}

	if host == "" {
		host = cfg.Client.Host
	}

	if port == 0 {
		port = cfg.Client.Port
	}

	return &clientParams{
		latitude:  latitude,
		longitude: longitude,
		host:      host,
		port:      port,
		units:     units,
	}, nil
}

func runClient(cmd *cobra.Command, forecast bool) error {
	cfg, logger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	params, err := parseClientParams(cmd, cfg)
	if err != nil {
		return err
	}

	c := client.New(params.host, params.port, cfg.Client.Timeout, tracing.NewNoopTracer(logger), logger)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Connecting to Weather MCP Server at %s\n", c.BaseURL())

	if forecast {
		resp, err := c.Forecast(cmd.Context(), params.latitude, params.longitude, params.units)
		if err != nil {
			return err
		}

		client.DisplayForecast(out, resp, params.units)

		return nil
	}

	resp, err := c.Weather(cmd.Context(), params.latitude, params.longitude, params.units)
	if err != nil {
		return err
	}

	client.DisplayWeather(out, resp, params.units)

	return nil
}
