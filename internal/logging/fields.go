package logging

// Standard field names used across the weather server.
const (
	// Service identification.
	FieldService   = "service"
	FieldComponent = "component"
	FieldVersion   = "version"

	// Transport.
	FieldTransport  = "transport"
	FieldRemoteAddr = "remote_addr"
	FieldURL        = "url"
	FieldEndpoint   = "endpoint"
	FieldBackend    = "backend"

	// Request/Response.
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldMethod     = "method"
	FieldTool       = "tool"
	FieldStatus     = "status"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration"

	// Weather query.
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldLocation  = "location"
	FieldUnits     = "units"

	// Error handling.
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldErrorCode = "error_code"
)

// ServiceName identifies the weather server in logs and traces.
const ServiceName = "weather-mcp"
