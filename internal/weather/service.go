package weather

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/logging"
)

// Provider fetches raw One Call payloads for validated coordinates.
type Provider interface {
	Current(ctx context.Context, q Query) (json.RawMessage, error)
	Forecast(ctx context.Context, q Query) (json.RawMessage, error)
}

// Resolver turns a place name into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, location string) (*Place, error)
}

// Service resolves and validates requests before handing them to the provider.
type Service struct {
	provider Provider
	resolver Resolver
	units    string
	lang     string
	logger   *zap.Logger
}

// NewService wires a provider and resolver. units and lang are used when a
// request leaves them empty.
func NewService(provider Provider, resolver Resolver, units, lang string, logger *zap.Logger) *Service {
	if units == "" {
		units = DefaultUnits
	}

	if lang == "" {
		lang = DefaultLang
	}

	return &Service{
		provider: provider,
		resolver: resolver,
		units:    units,
		lang:     lang,
		logger:   logger,
	}
}

// Current returns the raw current-only payload for req.
func (s *Service) Current(ctx context.Context, req Request) (json.RawMessage, error) {
	q, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.provider.Current(ctx, q)
}

// Forecast returns the raw full payload for req.
func (s *Service) Forecast(ctx context.Context, req Request) (json.RawMessage, error) {
	q, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.provider.Forecast(ctx, q)
}

// Resolve turns a Request into a validated Query. A non-empty location takes
// precedence over coordinates and is geocoded first.
func (s *Service) Resolve(ctx context.Context, req Request) (Query, error) {
	units, err := NormalizeUnits(req.Units)
	if err != nil {
		return Query{}, err
	}

	if req.Units == "" {
		units = s.units
	}

	q := Query{Units: units, Lang: req.Lang}
	if q.Lang == "" {
		q.Lang = s.lang
	}

	switch {
	case strings.TrimSpace(req.Location) != "":
		if s.resolver == nil {
			return Query{}, errors.NewInvalidArgumentError("location", "geocoding is not available")
		}

		place, err := s.resolver.Resolve(ctx, req.Location)
		if err != nil {
			return Query{}, err
		}

		logging.LogDebug(ctx, s.logger, "Resolved location",
			zap.String(logging.FieldLocation, req.Location),
			zap.Float64(logging.FieldLatitude, place.Latitude),
			zap.Float64(logging.FieldLongitude, place.Longitude),
		)

		q.Latitude, q.Longitude = place.Latitude, place.Longitude
	case req.Latitude != nil && req.Longitude != nil:
		q.Latitude, q.Longitude = *req.Latitude, *req.Longitude
	default:
		return Query{}, errors.NewMissingArgumentError(
			"either 'location' or both 'latitude' and 'longitude' must be provided")
	}

	if err := ValidateCoordinates(q.Latitude, q.Longitude); err != nil {
		return Query{}, err
	}

	return q, nil
}
