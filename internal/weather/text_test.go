package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const londonCurrent = `{
	"lat": 51.5073,
	"lon": -0.1276,
	"timezone": "Europe/London",
	"current": {
		"temp": 12.3,
		"feels_like": 11.1,
		"humidity": 80,
		"pressure": 1012,
		"visibility": 10000,
		"wind_speed": 4.6,
		"wind_deg": 250,
		"weather": [{"main": "Clouds", "description": "broken clouds"}]
	}
}`

func TestRenderCurrentTextMetric(t *testing.T) {
	t.Parallel()

	report, err := FormatCurrent([]byte(londonCurrent))
	require.NoError(t, err)

	expected := "Weather for London:\n\n" +
		"Location: London\n" +
		"Temperature: 12.3°C (feels like 11.1°C)\n" +
		"Condition: Broken Clouds\n" +
		"Humidity: 80%\n" +
		"Wind: 4.6 m/s, 250°\n" +
		"Visibility: 10000 m\n" +
		"Pressure: 1012 hPa\n\n" +
		"Data from OpenWeatherMap"

	assert.Equal(t, expected, RenderCurrentText("London", UnitsMetric, report))
}

func TestRenderCurrentTextImperialAndMissing(t *testing.T) {
	t.Parallel()

	report, err := FormatCurrent([]byte(`{"lat":40.71,"lon":-74,"timezone":"America/New_York",
		"current":{"temp":60,"visibility":16093,"wind_speed":5}}`))
	require.NoError(t, err)

	text := RenderCurrentText("40.71, -74", UnitsImperial, report)

	assert.Contains(t, text, "Location: New York\n")
	assert.Contains(t, text, "Temperature: 60°F (feels like N/A°F)")
	assert.Contains(t, text, "Wind: 5 mph\n")
	assert.Contains(t, text, "Visibility: 10 mi\n")
	assert.Contains(t, text, "Condition: No description available\n")
	assert.Contains(t, text, "Humidity: N/A%")
}

func TestRenderCurrentTextWithoutTimezone(t *testing.T) {
	t.Parallel()

	report, err := FormatCurrent([]byte(`{"lat":1.5,"lon":2.25,"current":{}}`))
	require.NoError(t, err)

	text := RenderCurrentText("1.5, 2.25", UnitsStandard, report)
	assert.Contains(t, text, "Location: Lat: 1.5, Lon: 2.25\n")
	assert.Contains(t, text, "Temperature: N/AK")
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	report, err := FormatCurrent([]byte(newYorkCurrent))
	require.NoError(t, err)

	summary := RenderSummary(report, UnitsMetric)
	assert.Contains(t, summary, "Current weather at 40.71, -74:")
	assert.Contains(t, summary, "Temperature: 15.5°C")
	assert.Contains(t, summary, "Conditions: clear sky")
	assert.Contains(t, summary, "Humidity: 65%")
	assert.Contains(t, summary, "Pressure: N/A hPa")
}

func TestUnitLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "°C", TemperatureUnit(UnitsMetric))
	assert.Equal(t, "°F", TemperatureUnit(UnitsImperial))
	assert.Equal(t, "K", TemperatureUnit(UnitsStandard))
	assert.Equal(t, "mph", SpeedUnit(UnitsImperial))
	assert.Equal(t, "m/s", SpeedUnit(UnitsStandard))
}
