// Package weather talks to the OpenWeatherMap One Call and Geocoding APIs and
// reshapes their responses into the records served by the HTTP and MCP frontends.
package weather

// Units accepted by the provider.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
	UnitsStandard = "standard"

	DefaultUnits = UnitsMetric
	DefaultLang  = "en"
)

// Query is a resolved, validated provider request.
type Query struct {
	Latitude  float64
	Longitude float64
	Units     string
	Lang      string
}

// Request is what callers hand to Service: either explicit coordinates or a
// free-text location to geocode first.
type Request struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Location  string   `json:"location,omitempty"`
	Units     string   `json:"units,omitempty"`
	Lang      string   `json:"lang,omitempty"`
}

// Place is a geocoding result.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Country   string  `json:"country,omitempty"`
	State     string  `json:"state,omitempty"`
}

// Location identifies where a report applies.
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  *string  `json:"timezone"`
}

// Condition is the first entry of a provider "weather" list.
type Condition struct {
	ID          *int    `json:"id"`
	Main        string  `json:"main"`
	Description string  `json:"description"`
	Icon        *string `json:"icon"`
}

// CurrentWeather is the flattened "current" block.
type CurrentWeather struct {
	Timestamp          *int64    `json:"timestamp"`
	Temperature        *float64  `json:"temperature"`
	FeelsLike          *float64  `json:"feels_like"`
	Pressure           *float64  `json:"pressure"`
	Humidity           *float64  `json:"humidity"`
	DewPoint           *float64  `json:"dew_point"`
	WindSpeed          *float64  `json:"wind_speed"`
	WindDeg            *float64  `json:"wind_deg"`
	Clouds             *float64  `json:"clouds"`
	Visibility         *float64  `json:"visibility"`
	UVI                *float64  `json:"uvi"`
	WeatherMain        string    `json:"weather_main"`
	WeatherDescription string    `json:"weather_description"`
	Weather            Condition `json:"weather"`
}

// CurrentReport is returned by /weather and the get_weather tool.
type CurrentReport struct {
	Location Location       `json:"location"`
	Current  CurrentWeather `json:"current"`
	Summary  string         `json:"summary,omitempty"`
}

// DailyForecastEntry is one day of the forecast.
type DailyForecastEntry struct {
	Timestamp                *int64    `json:"timestamp"`
	Date                     *string   `json:"date"`
	TempMin                  *float64  `json:"temp_min"`
	TempMax                  *float64  `json:"temp_max"`
	TempDay                  *float64  `json:"temp_day"`
	TempNight                *float64  `json:"temp_night"`
	Humidity                 *float64  `json:"humidity"`
	WeatherDescription       string    `json:"weather_description"`
	Weather                  Condition `json:"weather"`
	PrecipitationProbability *float64  `json:"precipitation_probability"`
	WindSpeed                *float64  `json:"wind_speed"`
	UVI                      *float64  `json:"uvi"`
}

// HourlyForecastEntry is one hour of the forecast.
type HourlyForecastEntry struct {
	Timestamp                *int64    `json:"timestamp"`
	Temperature              *float64  `json:"temperature"`
	FeelsLike                *float64  `json:"feels_like"`
	Humidity                 *float64  `json:"humidity"`
	WeatherDescription       string    `json:"weather_description"`
	Weather                  Condition `json:"weather"`
	PrecipitationProbability *float64  `json:"precipitation_probability"`
	WindSpeed                *float64  `json:"wind_speed"`
}

// ForecastReport is returned by /forecast and the get_forecast tool.
type ForecastReport struct {
	Location Location              `json:"location"`
	Current  CurrentWeather        `json:"current"`
	Daily    []DailyForecastEntry  `json:"daily"`
	Hourly   []HourlyForecastEntry `json:"hourly"`
	Timezone *string               `json:"timezone"`
}

// oneCallResponse mirrors the provider payload. Every field is optional.
type oneCallResponse struct {
	Lat            *float64      `json:"lat"`
	Lon            *float64      `json:"lon"`
	Timezone       *string       `json:"timezone"`
	TimezoneOffset *int64        `json:"timezone_offset"`
	Current        *currentBlock `json:"current"`
	Hourly         []hourlyBlock `json:"hourly"`
	Daily          []dailyBlock  `json:"daily"`
}

type conditionBlock struct {
	ID          *int    `json:"id"`
	Main        *string `json:"main"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

type currentBlock struct {
	Dt         *int64           `json:"dt"`
	Temp       *float64         `json:"temp"`
	FeelsLike  *float64         `json:"feels_like"`
	Pressure   *float64         `json:"pressure"`
	Humidity   *float64         `json:"humidity"`
	DewPoint   *float64         `json:"dew_point"`
	UVI        *float64         `json:"uvi"`
	Clouds     *float64         `json:"clouds"`
	Visibility *float64         `json:"visibility"`
	WindSpeed  *float64         `json:"wind_speed"`
	WindDeg    *float64         `json:"wind_deg"`
	Weather    []conditionBlock `json:"weather"`
}

type dailyTemp struct {
	Day   *float64 `json:"day"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Night *float64 `json:"night"`
}

type dailyBlock struct {
	Dt        *int64           `json:"dt"`
	Temp      *dailyTemp       `json:"temp"`
	Humidity  *float64         `json:"humidity"`
	Pop       *float64         `json:"pop"`
	WindSpeed *float64         `json:"wind_speed"`
	UVI       *float64         `json:"uvi"`
	Weather   []conditionBlock `json:"weather"`
}

type hourlyBlock struct {
	Dt        *int64           `json:"dt"`
	Temp      *float64         `json:"temp"`
	FeelsLike *float64         `json:"feels_like"`
	Humidity  *float64         `json:"humidity"`
	Pop       *float64         `json:"pop"`
	WindSpeed *float64         `json:"wind_speed"`
	Weather   []conditionBlock `json:"weather"`
}
