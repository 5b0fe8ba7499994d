package dispatcher

import (
	"github.com/actual-software/weather-mcp/pkg/mcp"
)

// Tool names.
const (
	ToolGetWeather        = "get_weather"
	ToolGetForecast       = "get_forecast"
	ToolGetCurrentWeather = "get_current_weather"
)

func coordinateProperties() map[string]interface{} {
	return map[string]interface{}{
		"latitude": map[string]interface{}{
			"type":        "number",
			"description": "Latitude of the location (-90 to 90)",
			"minimum":     -90,
			"maximum":     90,
		},
		"longitude": map[string]interface{}{
			"type":        "number",
			"description": "Longitude of the location (-180 to 180)",
			"minimum":     -180,
			"maximum":     180,
		},
		"location": map[string]interface{}{
			"type":        "string",
			"description": "City name or place (e.g. 'London' or 'New York, US'); used instead of coordinates",
		},
		"units": map[string]interface{}{
			"type":        "string",
			"description": "Units of measurement",
			"enum":        []string{"metric", "imperial", "standard"},
			"default":     "metric",
		},
		"lang": map[string]interface{}{
			"type":        "string",
			"description": "Language code for weather descriptions",
			"default":     "en",
		},
	}
}

// Tools returns the tool catalogue advertised by tools/list.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        ToolGetWeather,
			Description: "Get current weather for a location as structured JSON",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": coordinateProperties(),
			},
		},
		{
			Name:        ToolGetForecast,
			Description: "Get the daily (8 days) and hourly (48 hours) forecast for a location as structured JSON",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": coordinateProperties(),
			},
		},
		{
			Name:        ToolGetCurrentWeather,
			Description: "Get a readable summary of the current weather for a city or coordinates",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": coordinateProperties(),
			},
		},
	}
}

func isKnownTool(name string) bool {
	switch name {
	case ToolGetWeather, ToolGetForecast, ToolGetCurrentWeather:
		return true
	default:
		return false
	}
}
