package weather

import (
	"context"
	"encoding/json"
	"net/url"

	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/config"
	"github.com/actual-software/weather-mcp/internal/metrics"
	"github.com/actual-software/weather-mcp/internal/tracing"
)

const (
	endpointOneCall = "onecall"

	currentOnlyExclude = "minutely,hourly,daily,alerts"
)

// Client calls the One Call API. It is safe for concurrent use.
type Client struct {
	apiKey   string
	baseURL  string
	upstream *upstream
}

// NewClient creates a One Call client from configuration.
func NewClient(cfg config.WeatherConfig, tracer *tracing.Tracer, reg *metrics.Registry, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		upstream: newUpstream(cfg.Timeout, tracer, reg, logger.Named("onecall")),
	}
}

// Current fetches current conditions only. The returned bytes are the
// provider's JSON, unmodified.
func (c *Client) Current(ctx context.Context, q Query) (json.RawMessage, error) {
	params := c.params(q)
	params.Set("exclude", currentOnlyExclude)

	return c.upstream.get(ctx, endpointOneCall, c.baseURL, params)
}

// Forecast fetches the full One Call payload including hourly and daily data.
func (c *Client) Forecast(ctx context.Context, q Query) (json.RawMessage, error) {
	return c.upstream.get(ctx, endpointOneCall, c.baseURL, c.params(q))
}

func (c *Client) params(q Query) url.Values {
	units := q.Units
	if units == "" {
		units = DefaultUnits
	}

	lang := q.Lang
	if lang == "" {
		lang = DefaultLang
	}

	params := url.Values{}
	params.Set("lat", formatCoordinate(q.Latitude))
	params.Set("lon", formatCoordinate(q.Longitude))
	params.Set("appid", c.apiKey)
	params.Set("units", units)
	params.Set("lang", lang)

	return params
}
