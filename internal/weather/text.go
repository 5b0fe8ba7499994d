package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const metersToMiles = 0.000621371

// TemperatureUnit returns the display suffix for units.
func TemperatureUnit(units string) string {
	switch units {
	case UnitsImperial:
		return "°F"
	case UnitsStandard:
		return "K"
	default:
		return "°C"
	}
}

// SpeedUnit returns the display suffix for wind speed.
func SpeedUnit(units string) string {
	if units == UnitsImperial {
		return "mph"
	}

	return "m/s"
}

// FormatNumber renders v without trailing zeros, or N/A when nil.
func FormatNumber(v *float64) string {
	if v == nil {
		return notAvailable
	}

	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// RenderCurrentText renders the conversational summary returned by the
// get_current_weather tool. label names the place the caller asked about.
func RenderCurrentText(label, units string, report *CurrentReport) string {
	cur := report.Current
	tempUnit := TemperatureUnit(units)

	place := ""
	if report.Location.Timezone != nil {
		parts := strings.Split(*report.Location.Timezone, "/")
		place = strings.ReplaceAll(parts[len(parts)-1], "_", " ")
	}

	if place == "" {
		place = fmt.Sprintf("Lat: %s, Lon: %s",
			FormatNumber(report.Location.Latitude), FormatNumber(report.Location.Longitude))
	}

	wind := FormatNumber(cur.WindSpeed) + " " + SpeedUnit(units)
	if cur.WindDeg != nil {
		wind += ", " + FormatNumber(cur.WindDeg) + "°"
	}

	description := "No description available"
	if cur.Weather.Description != notAvailable {
		// Casers carry state and cannot be shared between goroutines.
		description = cases.Title(language.English).String(cur.Weather.Description)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Weather for %s:\n\n", label)
	fmt.Fprintf(&b, "Location: %s\n", place)
	fmt.Fprintf(&b, "Temperature: %s%s (feels like %s%s)\n",
		FormatNumber(cur.Temperature), tempUnit, FormatNumber(cur.FeelsLike), tempUnit)
	fmt.Fprintf(&b, "Condition: %s\n", description)
	fmt.Fprintf(&b, "Humidity: %s%%\n", FormatNumber(cur.Humidity))
	fmt.Fprintf(&b, "Wind: %s\n", wind)
	fmt.Fprintf(&b, "Visibility: %s\n", formatVisibility(cur.Visibility, units))
	fmt.Fprintf(&b, "Pressure: %s hPa\n\n", FormatNumber(cur.Pressure))
	b.WriteString("Data from OpenWeatherMap")

	return b.String()
}

func formatVisibility(meters *float64, units string) string {
	if meters == nil {
		return notAvailable
	}

	if units == UnitsImperial {
		miles := math.Round(*meters*metersToMiles*10) / 10

		return strconv.FormatFloat(miles, 'f', -1, 64) + " mi"
	}

	return FormatNumber(meters) + " m"
}

// RenderSummary renders the short summary attached to formatted /weather responses.
func RenderSummary(report *CurrentReport, units string) string {
	cur := report.Current
	tempUnit := TemperatureUnit(units)

	lines := []string{
		fmt.Sprintf("Current weather at %s, %s:",
			FormatNumber(report.Location.Latitude), FormatNumber(report.Location.Longitude)),
		fmt.Sprintf("Temperature: %s%s", FormatNumber(cur.Temperature), tempUnit),
		fmt.Sprintf("Feels like: %s%s", FormatNumber(cur.FeelsLike), tempUnit),
		fmt.Sprintf("Conditions: %s", cur.Weather.Description),
		fmt.Sprintf("Humidity: %s%%", FormatNumber(cur.Humidity)),
		fmt.Sprintf("Wind: %s %s", FormatNumber(cur.WindSpeed), SpeedUnit(units)),
		fmt.Sprintf("Pressure: %s hPa", FormatNumber(cur.Pressure)),
	}

	return strings.Join(lines, "\n")
}
