package http

import (
	"encoding/json"
	stderrors "errors"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/weather"
)

const defaultMaxBodySize = 1 << 20

// weatherBody is the POST form of /weather and /forecast.
type weatherBody struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Location  string   `json:"location"`
	Units     string   `json:"units"`
	Lang      string   `json:"lang"`
	Formatted *bool    `json:"formatted"`
}

// weatherParams is a parsed /weather or /forecast request.
type weatherParams struct {
	request   weather.Request
	formatted bool
}

func (f *Frontend) parseWeatherParams(w nethttp.ResponseWriter, r *nethttp.Request) (weatherParams, error) {
	if r.Method == nethttp.MethodPost {
		return f.parseWeatherBody(w, r)
	}

	return parseWeatherQuery(r.URL.Query())
}

func parseWeatherQuery(q url.Values) (weatherParams, error) {
	lat, err := queryCoordinate(q, "latitude", "lat", "latitude")
	if err != nil {
		return weatherParams{}, err
	}

	lon, err := queryCoordinate(q, "longitude", "lon", "longitude")
	if err != nil {
		return weatherParams{}, err
	}

	formatted, err := parseFormatted(q.Get("formatted"))
	if err != nil {
		return weatherParams{}, err
	}

	return weatherParams{
		request: weather.Request{
			Latitude:  lat,
			Longitude: lon,
			Location:  strings.TrimSpace(q.Get("location")),
			Units:     q.Get("units"),
			Lang:      q.Get("lang"),
		},
		formatted: formatted,
	}, nil
}

// queryCoordinate reads the first non-empty key. Absent values are nil.
func queryCoordinate(q url.Values, field string, keys ...string) (*float64, error) {
	for _, key := range keys {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.NewInvalidArgumentError(field, "must be a number")
		}

		return &v, nil
	}

	return nil, nil
}

func parseFormatted(raw string) (bool, error) {
	if raw == "" {
		return true, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewInvalidArgumentError("formatted", "must be true or false")
	}

	return v, nil
}

func (f *Frontend) parseWeatherBody(w nethttp.ResponseWriter, r *nethttp.Request) (weatherParams, error) {
	var body weatherBody
	if err := f.decodeBody(w, r, &body); err != nil {
		return weatherParams{}, err
	}

	formatted := true
	if body.Formatted != nil {
		formatted = *body.Formatted
	} else if raw := r.URL.Query().Get("formatted"); raw != "" {
		v, err := parseFormatted(raw)
		if err != nil {
			return weatherParams{}, err
		}

		formatted = v
	}

	lat, lon := body.Latitude, body.Longitude
	if lat == nil {
		lat = body.Lat
	}

	if lon == nil {
		lon = body.Lon
	}

	return weatherParams{
		request: weather.Request{
			Latitude:  lat,
			Longitude: lon,
			Location:  strings.TrimSpace(body.Location),
			Units:     body.Units,
			Lang:      body.Lang,
		},
		formatted: formatted,
	}, nil
}

// decodeBody decodes a size-limited JSON body. An empty body leaves v unchanged.
func (f *Frontend) decodeBody(w nethttp.ResponseWriter, r *nethttp.Request, v interface{}) error {
	limit := f.opts.Config.MaxBodySize
	if limit <= 0 {
		limit = defaultMaxBodySize
	}

	r.Body = nethttp.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}

		var tooLarge *nethttp.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.NewInvalidBodyError(err).WithHTTPStatus(nethttp.StatusRequestEntityTooLarge)
		}

		return errors.NewInvalidBodyError(err)
	}

	return nil
}

// readBody reads a size-limited raw body.
func (f *Frontend) readBody(w nethttp.ResponseWriter, r *nethttp.Request) ([]byte, error) {
	limit := f.opts.Config.MaxBodySize
	if limit <= 0 {
		limit = defaultMaxBodySize
	}

	data, err := io.ReadAll(nethttp.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *nethttp.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.NewInvalidBodyError(err).WithHTTPStatus(nethttp.StatusRequestEntityTooLarge)
		}

		return nil, errors.NewInvalidBodyError(err)
	}

	return data, nil
}
