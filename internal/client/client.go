// Package client talks to a running weather-mcp HTTP server and prints its
// responses for people.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/tracing"
	"github.com/actual-software/weather-mcp/internal/weather"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 8 << 20
)

// CurrentResponse is the /weather envelope.
type CurrentResponse struct {
	Status  string                 `json:"status"`
	Success bool                   `json:"success"`
	Data    *weather.CurrentReport `json:"data"`
	Error   string                 `json:"error"`
}

// ForecastResponse is the /forecast envelope.
type ForecastResponse struct {
	Status  string                  `json:"status"`
	Success bool                    `json:"success"`
	Data    *weather.ForecastReport `json:"data"`
	Error   string                  `json:"error"`
}

// Client fetches reports from the HTTP frontend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for http://host:port.
func New(host string, port int, timeout time.Duration, tracer *tracing.Tracer, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    "http://" + net.JoinHostPort(host, strconv.Itoa(port)),
		httpClient: tracer.HTTPClient(timeout),
		logger:     logger.Named("client"),
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Weather fetches GET /weather.
func (c *Client) Weather(ctx context.Context, latitude, longitude float64, units string) (*CurrentResponse, error) {
	var resp CurrentResponse
	if err := c.get(ctx, "/weather", latitude, longitude, units, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to fetch weather data from server")
	}

	return &resp, nil
}

// Forecast fetches GET /forecast.
func (c *Client) Forecast(ctx context.Context, latitude, longitude float64, units string) (*ForecastResponse, error) {
	var resp ForecastResponse
	if err := c.get(ctx, "/forecast", latitude, longitude, units, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to fetch forecast data from server")
	}

	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, latitude, longitude float64, units string, out interface{}) error {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))

	if units != "" {
		params.Set("units", units)
	}

	target := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("Requesting", zap.String("url", target), zap.String("request_id", requestID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewUpstreamRequestError("server", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errors.NewUpstreamRequestError("server", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var env struct {
			Error string `json:"error"`
		}

		message := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &env) == nil && env.Error != "" {
			message = env.Error
		}

		return errors.NewBackendStatusError(resp.StatusCode, message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewUpstreamDecodeError("server", err)
	}

	return nil
}
