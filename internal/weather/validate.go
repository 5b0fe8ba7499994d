package weather

import (
	"github.com/actual-software/weather-mcp/internal/errors"
)

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// ValidateCoordinates rejects coordinates outside [-90, 90] x [-180, 180].
// NaN fails both range checks.
func ValidateCoordinates(latitude, longitude float64) error {
	if !(latitude >= minLatitude && latitude <= maxLatitude) {
		return errors.NewInvalidLatitudeError(latitude)
	}

	if !(longitude >= minLongitude && longitude <= maxLongitude) {
		return errors.NewInvalidLongitudeError(longitude)
	}

	return nil
}

// NormalizeUnits returns units, or the default when empty.
func NormalizeUnits(units string) (string, error) {
	switch units {
	case "":
		return DefaultUnits, nil
	case UnitsMetric, UnitsImperial, UnitsStandard:
		return units, nil
	default:
		return "", errors.NewInvalidArgumentError("units", "must be one of metric, imperial, standard")
	}
}
