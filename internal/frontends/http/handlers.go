package http

import (
	"encoding/json"
	nethttp "net/http"

	"github.com/actual-software/weather-mcp/internal/auth"
	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/internal/weather"
)

// toolCallBody is the body of POST /tools/call.
type toolCallBody struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (f *Frontend) handleRoot(w nethttp.ResponseWriter, _ *nethttp.Request) {
	f.writeJSON(w, nethttp.StatusOK, map[string]interface{}{
		"service":     logging.ServiceName,
		"version":     f.opts.Version,
		"description": "OpenWeatherMap One Call proxy with an MCP tool interface",
		"endpoints": map[string]string{
			"GET /weather":     "current weather (lat, lon or location; units, lang, formatted)",
			"GET /forecast":    "daily and hourly forecast",
			"POST /mcp":        "JSON-RPC 2.0 MCP endpoint",
			"GET /mcp/ws":      "JSON-RPC 2.0 over WebSocket",
			"POST /tools/call": "call a tool and return the raw provider payload",
			"GET /health":      "liveness",
			"GET /metrics":     "Prometheus metrics",
		},
	})
}

func (f *Frontend) handleHealth(w nethttp.ResponseWriter, _ *nethttp.Request) {
	f.writeJSON(w, nethttp.StatusOK, map[string]string{
		"status":  "healthy",
		"service": logging.ServiceName,
		"version": f.opts.Version,
	})
}

func (f *Frontend) handleWeather(w nethttp.ResponseWriter, r *nethttp.Request) {
	params, err := f.parseWeatherParams(w, r)
	if err != nil {
		f.writeError(w, r, err)

		return
	}

	raw, err := f.opts.Backend.Current(r.Context(), params.request)
	if err != nil {
		f.writeError(w, r, err)

		return
	}

	if !params.formatted {
		f.writeSuccess(w, raw)

		return
	}

	report, err := weather.FormatCurrent(raw)
	if err != nil {
		f.writeError(w, r, err)

		return
	}

	report.Summary = weather.RenderSummary(report, f.unitsFor(params.request))

	f.writeSuccess(w, report)
}

func (f *Frontend) handleForecast(w nethttp.ResponseWriter, r *nethttp.Request) {
	params, err := f.parseWeatherParams(w, r)
	if err != nil {
		f.writeError(w, r, err)

		return
	}

	raw, err := f.opts.Backend.Forecast(r.Context(), params.request)
	if err != nil {
		f.writeError(w, r, err)

		return
	}

	if !params.formatted {
		f.writeSuccess(w, raw)

		return
	}

	report, err := weather.FormatForecast(raw)
	if err != nil {
		f.writeError(w, r, err)

		return
	}

	f.writeSuccess(w, report)
}

func (f *Frontend) handleToolCall(w nethttp.ResponseWriter, r *nethttp.Request) {
	var body toolCallBody
	if err := f.decodeBody(w, r, &body); err != nil {
		f.writeError(w, r, err)

		return
	}

	ctx := logging.ContextWithTool(r.Context(), body.Name)

	raw, err := f.opts.Dispatcher.CallToolRaw(ctx, body.Name, body.Arguments)
	if err != nil {
		f.metrics.IncrementToolCalls(toolLabel(body.Name, err), statusError)
		f.writeError(w, r.WithContext(ctx), err)

		return
	}

	f.metrics.IncrementToolCalls(body.Name, statusSuccess)
	f.writeSuccess(w, raw)
}

// handleMCP serves one JSON-RPC message per POST. Notifications get 204.
func (f *Frontend) handleMCP(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !f.authorize(w, r) {
		return
	}

	body, err := f.readBody(w, r)
	if err != nil {
		f.writeError(w, r, err)

		return
	}

	resp, ok := f.opts.Dispatcher.Handle(r.Context(), body)
	if !ok {
		w.WriteHeader(nethttp.StatusNoContent)

		return
	}

	f.writeJSON(w, nethttp.StatusOK, resp)
}

// authorize checks the bearer token when auth is configured.
func (f *Frontend) authorize(w nethttp.ResponseWriter, r *nethttp.Request) bool {
	if f.opts.Auth == nil {
		return true
	}

	claims, err := f.opts.Auth.Authenticate(r)
	if err != nil {
		f.metrics.IncrementAuthFailures("invalid_token")
		f.writeError(w, r, err)

		return false
	}

	if !claims.HasScope(auth.ScopeToolsCall) {
		f.metrics.IncrementAuthFailures("missing_scope")
		f.writeError(w, r, errors.NewAuthError("token lacks scope "+auth.ScopeToolsCall).
			WithHTTPStatus(nethttp.StatusForbidden))

		return false
	}

	return true
}

func (f *Frontend) unitsFor(req weather.Request) string {
	if req.Units == "" {
		return f.opts.DefaultUnits
	}

	return req.Units
}

// toolLabel keeps unknown tool names out of metric labels.
func toolLabel(name string, err error) string {
	if errors.TypeOf(err) == errors.TypeMethod {
		return "unknown"
	}

	return name
}
