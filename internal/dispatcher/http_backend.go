package dispatcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/internal/tracing"
	"github.com/actual-software/weather-mcp/internal/weather"
)

const maxBackendResponse = 8 << 20

// envelope is the JSON body returned by the HTTP frontend.
type envelope struct {
	Status  string          `json:"status"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// HTTPBackend forwards tool calls to a running weather-mcp HTTP server.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPBackend creates a backend for the server at baseURL.
func NewHTTPBackend(baseURL string, timeout time.Duration, tracer *tracing.Tracer, logger *zap.Logger) *HTTPBackend {
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}

	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  tracer.HTTPClient(timeout),
		logger:  logger.Named("http_backend"),
	}
}

// Current calls GET /weather on the backend.
func (b *HTTPBackend) Current(ctx context.Context, req weather.Request) (json.RawMessage, error) {
	return b.fetch(ctx, "/weather", req)
}

// Forecast calls GET /forecast on the backend.
func (b *HTTPBackend) Forecast(ctx context.Context, req weather.Request) (json.RawMessage, error) {
	return b.fetch(ctx, "/forecast", req)
}

func (b *HTTPBackend) fetch(ctx context.Context, path string, req weather.Request) (json.RawMessage, error) {
	params, err := backendParams(req)
	if err != nil {
		return nil, err
	}

	target := b.baseURL + path + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.WrapWithType(err, errors.TypeInternal, "failed to build backend request").
			WithComponent("backend")
	}

	requestID := logging.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	logging.LogDebug(ctx, b.logger, "Calling weather backend",
		zap.String(logging.FieldURL, target),
		zap.String(logging.FieldRequestID, requestID),
	)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, errors.NewUpstreamRequestError("backend", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBackendResponse))
	if err != nil {
		return nil, errors.NewUpstreamRequestError("backend", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := env.Error
		if decodeErr != nil || message == "" {
			message = strings.TrimSpace(string(body))
		}

		return nil, errors.NewBackendStatusError(resp.StatusCode, message)
	}

	if decodeErr != nil {
		return nil, errors.NewUpstreamDecodeError("backend", decodeErr)
	}

	if !env.Success && env.Status != "success" {
		return nil, errors.NewBackendStatusError(resp.StatusCode, env.Error)
	}

	return env.Data, nil
}

// backendParams validates explicit coordinates locally and builds the query string.
func backendParams(req weather.Request) (url.Values, error) {
	params := url.Values{}

	switch {
	case req.Location != "":
		params.Set("location", req.Location)
	case req.Latitude != nil && req.Longitude != nil:
		if err := weather.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
			return nil, err
		}

		params.Set("lat", strconv.FormatFloat(*req.Latitude, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*req.Longitude, 'f', -1, 64))
	default:
		return nil, errors.NewMissingArgumentError(
			"either 'location' or both 'latitude' and 'longitude' must be provided")
	}

	if req.Units != "" {
		params.Set("units", req.Units)
	}

	if req.Lang != "" {
		params.Set("lang", req.Lang)
	}

	params.Set("formatted", "false")

	return params, nil
}
