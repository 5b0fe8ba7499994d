package weather

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newYorkCurrent = `{
	"lat": 40.71,
	"lon": -74.0,
	"timezone": "America/New_York",
	"current": {
		"dt": 1699036800,
		"temp": 15.5,
		"humidity": 65,
		"weather": [{"main": "Clear", "description": "clear sky"}]
	}
}`

func TestFormatCurrentEndToEnd(t *testing.T) {
	t.Parallel()

	report, err := FormatCurrent([]byte(newYorkCurrent))
	require.NoError(t, err)

	require.NotNil(t, report.Current.Temperature)
	assert.InDelta(t, 15.5, *report.Current.Temperature, 0)
	assert.Equal(t, "clear sky", report.Current.Weather.Description)
	assert.Equal(t, "Clear", report.Current.Weather.Main)
	assert.Equal(t, "clear sky", report.Current.WeatherDescription)
	require.NotNil(t, report.Location.Latitude)
	assert.InDelta(t, 40.71, *report.Location.Latitude, 0)
	assert.Equal(t, int64(1699036800), *report.Current.Timestamp)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Nil(t, decoded["current"]["pressure"], "missing fields serialise as null")
	assert.Contains(t, decoded["current"], "pressure")
	assert.Equal(t, "America/New_York", decoded["location"]["timezone"])
}

func TestFormatCurrentEmptyWeatherList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty list", raw: `{"current":{"temp":1,"weather":[]}}`},
		{name: "missing list", raw: `{"current":{"temp":1}}`},
		{name: "missing current", raw: `{"lat":1,"lon":2}`},
		{name: "empty object", raw: `{}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report, err := FormatCurrent([]byte(tt.raw))
			require.NoError(t, err)

			assert.Equal(t, "N/A", report.Current.Weather.Main)
			assert.Equal(t, "N/A", report.Current.Weather.Description)
			assert.Equal(t, "N/A", report.Current.WeatherMain)
			assert.Nil(t, report.Current.Weather.ID)
		})
	}
}

func TestFormatCurrentRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := FormatCurrent([]byte(`not json`))
	require.Error(t, err)
}

func buildForecast(days, hours int) string {
	daily := make([]string, 0, days)
	for i := 0; i < days; i++ {
		daily = append(daily, fmt.Sprintf(
			`{"dt":%d,"temp":{"min":%d,"max":%d,"day":%d,"night":%d},"pop":0.%d,"humidity":50,"weather":[{"description":"day %d"}]}`,
			1699000000+i*86400, i, i+10, i+5, i+1, i%10, i))
	}

	hourly := make([]string, 0, hours)
	for i := 0; i < hours; i++ {
		hourly = append(hourly, fmt.Sprintf(`{"dt":%d,"temp":%d,"pop":0.5,"weather":[{"description":"hour %d"}]}`,
			1699000000+i*3600, i, i))
	}

	return fmt.Sprintf(`{"lat":51.5,"lon":-0.12,"timezone":"Europe/London","timezone_offset":0,
		"current":{"temp":10},"daily":[%s],"hourly":[%s]}`,
		strings.Join(daily, ","), strings.Join(hourly, ","))
}

func TestFormatForecastCaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		days       int
		hours      int
		wantDays   int
		wantHourly int
	}{
		{name: "empty", days: 0, hours: 0, wantDays: 0, wantHourly: 0},
		{name: "under caps", days: 3, hours: 10, wantDays: 3, wantHourly: 10},
		{name: "exactly caps", days: 8, hours: 48, wantDays: 8, wantHourly: 48},
		{name: "provider full payload", days: 8, hours: 48, wantDays: 8, wantHourly: 48},
		{name: "over caps", days: 12, hours: 60, wantDays: 8, wantHourly: 48},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report, err := FormatForecast([]byte(buildForecast(tt.days, tt.hours)))
			require.NoError(t, err)

			require.Len(t, report.Daily, tt.wantDays)
			require.Len(t, report.Hourly, tt.wantHourly)

			for i, day := range report.Daily {
				assert.Equal(t, fmt.Sprintf("day %d", i), day.Weather.Description, "order preserved")
			}

			for i, hour := range report.Hourly {
				assert.InDelta(t, float64(i), *hour.Temperature, 0, "order preserved")
			}
		})
	}
}

func TestFormatForecastDailyFields(t *testing.T) {
	t.Parallel()

	report, err := FormatForecast([]byte(buildForecast(2, 1)))
	require.NoError(t, err)

	day := report.Daily[1]
	assert.Equal(t, "2023-11-04", *day.Date)
	assert.InDelta(t, 1, *day.TempMin, 0)
	assert.InDelta(t, 11, *day.TempMax, 0)
	assert.InDelta(t, 6, *day.TempDay, 0)
	assert.InDelta(t, 2, *day.TempNight, 0)
	assert.InDelta(t, 0.1, *day.PrecipitationProbability, 1e-9)
	assert.Nil(t, day.UVI)
	assert.Equal(t, "Europe/London", *report.Timezone)
	assert.Equal(t, "N/A", report.Current.Weather.Description)
}

func TestFormatForecastMissingTemp(t *testing.T) {
	t.Parallel()

	report, err := FormatForecast([]byte(`{"daily":[{"weather":[]}],"hourly":[{}]}`))
	require.NoError(t, err)

	require.Len(t, report.Daily, 1)
	assert.Nil(t, report.Daily[0].TempMin)
	assert.Nil(t, report.Daily[0].Date)
	assert.Equal(t, "N/A", report.Daily[0].Weather.Main)
	assert.Nil(t, report.Hourly[0].Temperature)
	assert.Nil(t, report.Timezone)
}
