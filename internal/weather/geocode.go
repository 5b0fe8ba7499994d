package weather

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/config"
	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/metrics"
	"github.com/actual-software/weather-mcp/internal/tracing"
)

const endpointGeocode = "geocode"

// Geocoder resolves place names with the OpenWeatherMap direct geocoding API.
type Geocoder struct {
	apiKey   string
	geoURL   string
	upstream *upstream
}

// NewGeocoder creates a geocoder from configuration.
func NewGeocoder(cfg config.WeatherConfig, tracer *tracing.Tracer, reg *metrics.Registry, logger *zap.Logger) *Geocoder {
	geoURL := cfg.GeoURL
	if geoURL == "" {
		geoURL = config.DefaultGeoURL
	}

	return &Geocoder{
		apiKey:   cfg.APIKey,
		geoURL:   geoURL,
		upstream: newUpstream(cfg.Timeout, tracer, reg, logger.Named("geocoder")),
	}
}

// Resolve returns the best match for location. An empty result is a
// validation error naming the location.
func (g *Geocoder) Resolve(ctx context.Context, location string) (*Place, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.NewMissingArgumentError("location must not be empty")
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("limit", "1")
	params.Set("appid", g.apiKey)

	body, err := g.upstream.get(ctx, endpointGeocode, g.geoURL, params)
	if err != nil {
		return nil, err
	}

	var places []Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, errors.NewUpstreamDecodeError(endpointGeocode, err)
	}

	if len(places) == 0 {
		return nil, errors.NewLocationNotFoundError(location)
	}

	return &places[0], nil
}
