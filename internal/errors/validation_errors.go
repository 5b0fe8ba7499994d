package errors

import (
	"fmt"
	"net/http"
)

// Error codes for argument and configuration validation.
const (
	ErrCodeInvalidLatitude  = "VALIDATION_INVALID_LATITUDE"
	ErrCodeInvalidLongitude = "VALIDATION_INVALID_LONGITUDE"
	ErrCodeMissingArgument  = "VALIDATION_MISSING_ARGUMENT"
	ErrCodeInvalidArgument  = "VALIDATION_INVALID_ARGUMENT"
	ErrCodeLocationNotFound = "VALIDATION_LOCATION_NOT_FOUND"
	ErrCodeInvalidBody      = "VALIDATION_INVALID_BODY"
	ErrCodeInvalidConfig    = "VALIDATION_INVALID_CONFIG"
)

// NewInvalidLatitudeError creates an error for a latitude outside [-90, 90].
func NewInvalidLatitudeError(latitude float64) *ServiceError {
	return New(TypeValidation, fmt.Sprintf("invalid latitude: %v. Must be between -90 and 90", latitude)).
		WithComponent("validation").
		WithCode(ErrCodeInvalidLatitude).
		WithContext("latitude", latitude).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewInvalidLongitudeError creates an error for a longitude outside [-180, 180].
func NewInvalidLongitudeError(longitude float64) *ServiceError {
	return New(TypeValidation, fmt.Sprintf("invalid longitude: %v. Must be between -180 and 180", longitude)).
		WithComponent("validation").
		WithCode(ErrCodeInvalidLongitude).
		WithContext("longitude", longitude).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewMissingArgumentError creates an error for required arguments that were not supplied.
func NewMissingArgumentError(message string) *ServiceError {
	return New(TypeValidation, message).
		WithComponent("validation").
		WithCode(ErrCodeMissingArgument).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewInvalidArgumentError creates an error for an argument with an unusable value.
func NewInvalidArgumentError(field, reason string) *ServiceError {
	return New(TypeValidation, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithComponent("validation").
		WithCode(ErrCodeInvalidArgument).
		WithContext("field", field).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewLocationNotFoundError creates an error for a place name the geocoder could not resolve.
func NewLocationNotFoundError(location string) *ServiceError {
	return New(TypeValidation, fmt.Sprintf("Location '%s' not found", location)).
		WithComponent("geocoding").
		WithCode(ErrCodeLocationNotFound).
		WithContext("location", location).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewInvalidBodyError creates an error for request bodies that cannot be decoded.
func NewInvalidBodyError(cause error) *ServiceError {
	return WrapWithType(cause, TypeValidation, "invalid request body").
		WithComponent("validation").
		WithCode(ErrCodeInvalidBody).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewConfigError creates an error for an invalid configuration value.
func NewConfigError(field, reason string) *ServiceError {
	return New(TypeValidation, fmt.Sprintf("invalid configuration %s: %s", field, reason)).
		WithComponent("config").
		WithCode(ErrCodeInvalidConfig).
		WithContext("field", field)
}
