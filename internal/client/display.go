package client

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/actual-software/weather-mcp/internal/weather"
)

const (
	weatherWidth  = 50
	forecastWidth = 70

	// MaxHourlyDisplay is how many hourly entries the forecast view prints.
	MaxHourlyDisplay = 12

	invalidResponse = "Error: Invalid response from server"
)

// DisplayWeather prints a current-weather envelope.
func DisplayWeather(w io.Writer, resp *CurrentResponse, units string) {
	if resp == nil || resp.Status != "success" || resp.Data == nil {
		fmt.Fprintln(w, invalidResponse)

		return
	}

	data := resp.Data
	cur := data.Current
	temp := weather.TemperatureUnit(units)
	speed := weather.SpeedUnit(units)
	rule := strings.Repeat("=", weatherWidth)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "WEATHER INFORMATION")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Location: Lat %s, Lon %s\n",
		weather.FormatNumber(data.Location.Latitude), weather.FormatNumber(data.Location.Longitude))
	fmt.Fprintf(w, "Timezone: %s\n", stringOrNA(data.Location.Timezone))
	fmt.Fprintln(w, strings.Repeat("-", weatherWidth))
	fmt.Fprintf(w, "Weather: %s (%s)\n", cur.Weather.Description, cur.Weather.Main)
	fmt.Fprintf(w, "Temperature: %s%s\n", weather.FormatNumber(cur.Temperature), temp)
	fmt.Fprintf(w, "Feels Like: %s%s\n", weather.FormatNumber(cur.FeelsLike), temp)
	fmt.Fprintf(w, "Humidity: %s%%\n", weather.FormatNumber(cur.Humidity))
	fmt.Fprintf(w, "Pressure: %s hPa\n", weather.FormatNumber(cur.Pressure))
	fmt.Fprintf(w, "Wind Speed: %s %s\n", weather.FormatNumber(cur.WindSpeed), speed)
	fmt.Fprintf(w, "Wind Direction: %s°\n", weather.FormatNumber(cur.WindDeg))
	fmt.Fprintf(w, "Clouds: %s%%\n", weather.FormatNumber(cur.Clouds))
	fmt.Fprintf(w, "Visibility: %s meters\n", weather.FormatNumber(cur.Visibility))
	fmt.Fprintf(w, "UV Index: %s\n", weather.FormatNumber(cur.UVI))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// DisplayForecast prints a forecast envelope: current conditions, every daily
// entry and the first MaxHourlyDisplay hourly entries.
func DisplayForecast(w io.Writer, resp *ForecastResponse, units string) {
	if resp == nil || resp.Status != "success" || resp.Data == nil {
		fmt.Fprintln(w, invalidResponse)

		return
	}

	data := resp.Data
	cur := data.Current
	temp := weather.TemperatureUnit(units)
	speed := weather.SpeedUnit(units)
	rule := strings.Repeat("=", forecastWidth)
	section := strings.Repeat("-", forecastWidth)
	loc := locationOf(data)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "WEATHER FORECAST")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Location: Lat %s, Lon %s\n",
		weather.FormatNumber(data.Location.Latitude), weather.FormatNumber(data.Location.Longitude))
	fmt.Fprintf(w, "Timezone: %s\n", stringOrNA(data.Timezone))

	fmt.Fprintln(w)
	fmt.Fprintln(w, section)
	fmt.Fprintln(w, "CURRENT WEATHER")
	fmt.Fprintln(w, section)
	fmt.Fprintf(w, "Weather: %s (%s)\n", cur.Weather.Description, cur.Weather.Main)
	fmt.Fprintf(w, "Temperature: %s%s\n", weather.FormatNumber(cur.Temperature), temp)
	fmt.Fprintf(w, "Feels Like: %s%s\n", weather.FormatNumber(cur.FeelsLike), temp)
	fmt.Fprintf(w, "Humidity: %s%%\n", weather.FormatNumber(cur.Humidity))
	fmt.Fprintf(w, "Wind Speed: %s %s\n", weather.FormatNumber(cur.WindSpeed), speed)
	fmt.Fprintf(w, "UV Index: %s\n", weather.FormatNumber(cur.UVI))

	if len(data.Daily) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, section)
		fmt.Fprintf(w, "DAILY FORECAST (Next %d Days)\n", len(data.Daily))
		fmt.Fprintln(w, section)

		for _, day := range data.Daily {
			fmt.Fprintf(w, "\n%s:\n", dayHeading(day, loc))
			fmt.Fprintf(w, "  Weather: %s\n", day.Weather.Description)
			fmt.Fprintf(w, "  Temp: %s%s - %s%s (Day: %s%s, Night: %s%s)\n",
				weather.FormatNumber(day.TempMin), temp, weather.FormatNumber(day.TempMax), temp,
				weather.FormatNumber(day.TempDay), temp, weather.FormatNumber(day.TempNight), temp)
			fmt.Fprintf(w, "  Humidity: %s%%\n", weather.FormatNumber(day.Humidity))
			fmt.Fprintf(w, "  Precipitation: %s\n", formatPrecipitation(day.PrecipitationProbability))
			fmt.Fprintf(w, "  Wind: %s %s\n", weather.FormatNumber(day.WindSpeed), speed)
		}
	}

	if len(data.Hourly) > 0 {
		hourly := data.Hourly
		if len(hourly) > MaxHourlyDisplay {
			hourly = hourly[:MaxHourlyDisplay]
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, section)
		fmt.Fprintf(w, "HOURLY FORECAST (Next %d Hours)\n", len(hourly))
		fmt.Fprintln(w, section)

		for _, hour := range hourly {
			fmt.Fprintf(w, "%s: %s%s, %s, Precip: %s\n",
				clock(hour.Timestamp, loc), weather.FormatNumber(hour.Temperature), temp,
				hour.Weather.Description, formatPrecipitation(hour.PrecipitationProbability))
		}
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// locationOf returns the report's IANA zone, or UTC when it is unknown.
func locationOf(report *weather.ForecastReport) *time.Location {
	name := report.Timezone
	if name == nil {
		name = report.Location.Timezone
	}

	if name != nil {
		if loc, err := time.LoadLocation(*name); err == nil {
			return loc
		}
	}

	return time.UTC
}

// dayHeading renders "2006-01-02 (Monday)". The server's local date is used
// when present.
func dayHeading(day weather.DailyForecastEntry, loc *time.Location) string {
	if day.Date != nil {
		if t, err := time.Parse(time.DateOnly, *day.Date); err == nil {
			return t.Format("2006-01-02 (Monday)")
		}
	}

	if day.Timestamp != nil {
		return time.Unix(*day.Timestamp, 0).In(loc).Format("2006-01-02 (Monday)")
	}

	return "Unknown date"
}

func clock(ts *int64, loc *time.Location) string {
	if ts == nil {
		return "--:--"
	}

	return time.Unix(*ts, 0).In(loc).Format("15:04")
}

// formatPrecipitation renders a 0..1 probability as a whole percentage.
func formatPrecipitation(pop *float64) string {
	if pop == nil {
		return "0%"
	}

	return fmt.Sprintf("%.0f%%", *pop*100)
}

func stringOrNA(s *string) string {
	if s == nil {
		return "N/A"
	}

	return *s
}
