package errors

import (
	"errors"

	"github.com/actual-software/weather-mcp/internal/metrics"
)

const unknownValue = "unknown"

// RecordErrorMetrics records error counters for a ServiceError.
func RecordErrorMetrics(err *ServiceError, registry *metrics.Registry) {
	if err == nil || registry == nil {
		return
	}

	component := err.Component
	if component == "" {
		component = unknownValue
	}

	registry.IncrementErrors(string(err.Type), component)

	if err.HTTPStatus > 0 {
		registry.IncrementErrorsByHTTPStatus(err.HTTPStatus)
	}
}

// RecordError records error metrics for any error. Errors that are not
// ServiceErrors are counted under their derived type.
func RecordError(err error, registry *metrics.Registry) {
	if err == nil || registry == nil {
		return
	}

	var se *ServiceError
	if errors.As(err, &se) {
		RecordErrorMetrics(se, registry)

		return
	}

	registry.IncrementErrors(string(TypeOf(err)), unknownValue)
}
