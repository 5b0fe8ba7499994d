package dispatcher

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"math"
	"strconv"
	"strings"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/weather"
)

// coordinate accepts a JSON number or a numeric string.
type coordinate struct {
	value *float64
}

func (c *coordinate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		c.value = nil

		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		c.value = &f

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.NewInvalidArgumentError("coordinate", "must be a number")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) {
		return errors.NewInvalidArgumentError("coordinate", "must be a number")
	}

	c.value = &f

	return nil
}

type toolArguments struct {
	Latitude  coordinate `json:"latitude"`
	Longitude coordinate `json:"longitude"`
	Location  string     `json:"location"`
	Units     string     `json:"units"`
	Lang      string     `json:"lang"`
}

// parseToolArguments decodes tools/call arguments into a weather request.
// Absent or null arguments yield an empty request, which fails later with a
// missing-argument error.
func parseToolArguments(raw json.RawMessage) (weather.Request, error) {
	var args toolArguments

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &args); err != nil {
			var se *errors.ServiceError
			if stderrors.As(err, &se) {
				return weather.Request{}, se
			}

			return weather.Request{}, errors.NewInvalidArgumentError("arguments", "must be an object")
		}
	}

	return weather.Request{
		Latitude:  args.Latitude.value,
		Longitude: args.Longitude.value,
		Location:  strings.TrimSpace(args.Location),
		Units:     args.Units,
		Lang:      args.Lang,
	}, nil
}

// label names the place a request asked about.
func label(req weather.Request) string {
	if req.Location != "" {
		return req.Location
	}

	if req.Latitude != nil && req.Longitude != nil {
		return weather.FormatNumber(req.Latitude) + ", " + weather.FormatNumber(req.Longitude)
	}

	return ""
}
