package weather

import (
	"encoding/json"
	"time"

	"github.com/actual-software/weather-mcp/internal/errors"
)

const (
	// MaxDailyEntries caps the daily forecast.
	MaxDailyEntries = 8
	// MaxHourlyEntries caps the hourly forecast.
	MaxHourlyEntries = 48

	notAvailable = "N/A"
	dateLayout   = "2006-01-02"
)

// FormatCurrent reshapes a One Call payload into a CurrentReport. Missing
// fields stay nil; only undecodable JSON is an error.
func FormatCurrent(raw []byte) (*CurrentReport, error) {
	resp, err := decodeOneCall(raw)
	if err != nil {
		return nil, err
	}

	return &CurrentReport{
		Location: locationOf(resp),
		Current:  currentOf(resp.Current),
	}, nil
}

// FormatForecast reshapes a full One Call payload into a ForecastReport with
// at most MaxDailyEntries days and MaxHourlyEntries hours, in source order.
func FormatForecast(raw []byte) (*ForecastReport, error) {
	resp, err := decodeOneCall(raw)
	if err != nil {
		return nil, err
	}

	daily := resp.Daily
	if len(daily) > MaxDailyEntries {
		daily = daily[:MaxDailyEntries]
	}

	hourly := resp.Hourly
	if len(hourly) > MaxHourlyEntries {
		hourly = hourly[:MaxHourlyEntries]
	}

	report := &ForecastReport{
		Location: locationOf(resp),
		Current:  currentOf(resp.Current),
		Daily:    make([]DailyForecastEntry, 0, len(daily)),
		Hourly:   make([]HourlyForecastEntry, 0, len(hourly)),
		Timezone: resp.Timezone,
	}

	offset := int64(0)
	if resp.TimezoneOffset != nil {
		offset = *resp.TimezoneOffset
	}

	for i := range daily {
		report.Daily = append(report.Daily, dailyOf(&daily[i], offset))
	}

	for i := range hourly {
		report.Hourly = append(report.Hourly, hourlyOf(&hourly[i]))
	}

	return report, nil
}

func decodeOneCall(raw []byte) (*oneCallResponse, error) {
	var resp oneCallResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewUpstreamDecodeError("format", err)
	}

	return &resp, nil
}

func locationOf(resp *oneCallResponse) Location {
	return Location{
		Latitude:  resp.Lat,
		Longitude: resp.Lon,
		Timezone:  resp.Timezone,
	}
}

func conditionOf(list []conditionBlock) Condition {
	cond := Condition{Main: notAvailable, Description: notAvailable}
	if len(list) == 0 {
		return cond
	}

	first := list[0]
	cond.ID = first.ID
	cond.Icon = first.Icon

	if first.Main != nil {
		cond.Main = *first.Main
	}

	if first.Description != nil {
		cond.Description = *first.Description
	}

	return cond
}

func currentOf(block *currentBlock) CurrentWeather {
	if block == nil {
		block = &currentBlock{}
	}

	cond := conditionOf(block.Weather)

	return CurrentWeather{
		Timestamp:          block.Dt,
		Temperature:        block.Temp,
		FeelsLike:          block.FeelsLike,
		Pressure:           block.Pressure,
		Humidity:           block.Humidity,
		DewPoint:           block.DewPoint,
		WindSpeed:          block.WindSpeed,
		WindDeg:            block.WindDeg,
		Clouds:             block.Clouds,
		Visibility:         block.Visibility,
		UVI:                block.UVI,
		WeatherMain:        cond.Main,
		WeatherDescription: cond.Description,
		Weather:            cond,
	}
}

func dailyOf(block *dailyBlock, offset int64) DailyForecastEntry {
	cond := conditionOf(block.Weather)

	entry := DailyForecastEntry{
		Timestamp:                block.Dt,
		Humidity:                 block.Humidity,
		WeatherDescription:       cond.Description,
		Weather:                  cond,
		PrecipitationProbability: block.Pop,
		WindSpeed:                block.WindSpeed,
		UVI:                      block.UVI,
	}

	if block.Dt != nil {
		date := time.Unix(*block.Dt+offset, 0).UTC().Format(dateLayout)
		entry.Date = &date
	}

	if block.Temp != nil {
		entry.TempMin = block.Temp.Min
		entry.TempMax = block.Temp.Max
		entry.TempDay = block.Temp.Day
		entry.TempNight = block.Temp.Night
	}

	return entry
}

func hourlyOf(block *hourlyBlock) HourlyForecastEntry {
	cond := conditionOf(block.Weather)

	return HourlyForecastEntry{
		Timestamp:                block.Dt,
		Temperature:              block.Temp,
		FeelsLike:                block.FeelsLike,
		Humidity:                 block.Humidity,
		WeatherDescription:       cond.Description,
		Weather:                  cond,
		PrecipitationProbability: block.Pop,
		WindSpeed:                block.WindSpeed,
	}
}
