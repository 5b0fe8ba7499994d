package client

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/tracing"
)

const currentEnvelope = `{
	"status": "success",
	"success": true,
	"data": {
		"location": {"latitude": 40.71, "longitude": -74, "timezone": "America/New_York"},
		"current": {
			"temperature": 15.5,
			"feels_like": 14.2,
			"humidity": 65,
			"pressure": 1013,
			"wind_speed": 3.6,
			"wind_deg": 200,
			"clouds": 0,
			"visibility": 10000,
			"uvi": null,
			"weather": {"main": "Clear", "description": "clear sky"}
		}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(server.URL, "http://"))
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)

	return New(host, port, 0, tracing.NewNoopTracer(logger), logger)
}

func TestClientWeather(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "40.71", r.URL.Query().Get("lat"))
		assert.Equal(t, "-74.006", r.URL.Query().Get("lon"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		_, _ = w.Write([]byte(currentEnvelope))
	})

	resp, err := c.Weather(context.Background(), 40.71, -74.006, "")
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "clear sky", resp.Data.Current.Weather.Description)
	assert.Nil(t, resp.Data.Current.UVI)
}

func TestClientErrorStatus(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","success":false,"error":"invalid latitude: 91. Must be between -90 and 90"}`))
	})

	_, err := c.Forecast(context.Background(), 91, 0, "")
	require.Error(t, err)
	assert.Equal(t, errors.TypeValidation, errors.TypeOf(err))
	assert.Contains(t, errors.PublicMessage(err), "invalid latitude: 91")
	assert.Contains(t, errors.PublicMessage(err), "failed to fetch forecast data from server")
}

func TestClientUnreachable(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)
	c := New("127.0.0.1", 1, 0, tracing.NewNoopTracer(logger), logger)

	assert.Equal(t, "http://127.0.0.1:1", c.BaseURL())

	_, err := c.Weather(context.Background(), 0, 0, "")
	require.Error(t, err)
	assert.Equal(t, errors.TypeUnavailable, errors.TypeOf(err))
}

func TestDisplayWeather(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(currentEnvelope))
	})

	resp, err := c.Weather(context.Background(), 40.71, -74, "")
	require.NoError(t, err)

	var out bytes.Buffer
	DisplayWeather(&out, resp, "metric")

	text := out.String()
	assert.Contains(t, text, strings.Repeat("=", 50)+"\nWEATHER INFORMATION\n")
	assert.Contains(t, text, "Location: Lat 40.71, Lon -74\n")
	assert.Contains(t, text, "Timezone: America/New_York\n")
	assert.Contains(t, text, "Weather: clear sky (Clear)\n")
	assert.Contains(t, text, "Temperature: 15.5°C\n")
	assert.Contains(t, text, "Wind Speed: 3.6 m/s\n")
	assert.Contains(t, text, "Wind Direction: 200°\n")
	assert.Contains(t, text, "UV Index: N/A\n")
}

func TestDisplayInvalidResponse(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	DisplayWeather(&out, &CurrentResponse{Status: "error", Error: "boom"}, "metric")
	DisplayForecast(&out, nil, "metric")

	assert.Equal(t, invalidResponse+"\n"+invalidResponse+"\n", out.String())
}

func TestDisplayForecast(t *testing.T) {
	t.Parallel()

	var hourly []string
	for i := 0; i < 20; i++ {
		hourly = append(hourly, fmt.Sprintf(
			`{"timestamp": %d, "temperature": %d, "weather": {"main": "Clouds", "description": "few clouds"}, "precipitation_probability": 0.25}`,
			1699036800+i*3600, 10+i))
	}

	body := `{"status":"success","success":true,"data":{
		"location": {"latitude": 51.5, "longitude": -0.12, "timezone": null},
		"current": {"temperature": 9, "weather": {"main": "Rain", "description": "light rain"}},
		"daily": [{"timestamp": 1699099200, "date": "2023-11-04", "temp_min": 6, "temp_max": 12,
			"temp_day": 11, "temp_night": 7, "humidity": 80, "weather": {"main": "Rain", "description": "moderate rain"},
			"precipitation_probability": 0.87, "wind_speed": 5.1}],
		"hourly": [` + strings.Join(hourly, ",") + `],
		"timezone": null
	}}`

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	resp, err := c.Forecast(context.Background(), 51.5, -0.12, "imperial")
	require.NoError(t, err)

	var out bytes.Buffer
	DisplayForecast(&out, resp, "imperial")

	text := out.String()
	assert.Contains(t, text, "WEATHER FORECAST")
	assert.Contains(t, text, "Timezone: N/A")
	assert.Contains(t, text, "DAILY FORECAST (Next 1 Days)")
	assert.Contains(t, text, "2023-11-04 (Saturday):")
	assert.Contains(t, text, "  Temp: 6°F - 12°F (Day: 11°F, Night: 7°F)")
	assert.Contains(t, text, "  Precipitation: 87%")
	assert.Contains(t, text, "  Wind: 5.1 mph")
	assert.Contains(t, text, "HOURLY FORECAST (Next 12 Hours)")
	assert.Contains(t, text, "18:40: 10°F, few clouds, Precip: 25%")

	assert.Equal(t, MaxHourlyDisplay, strings.Count(text, "Precip: 25%"), "hourly view is truncated")
}
