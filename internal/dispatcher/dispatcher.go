// Package dispatcher implements the JSON-RPC 2.0 / MCP method table shared by
// every frontend.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/internal/metrics"
	"github.com/actual-software/weather-mcp/internal/tracing"
	"github.com/actual-software/weather-mcp/internal/weather"
	"github.com/actual-software/weather-mcp/pkg/mcp"
)

const (
	defaultToolTimeout = 30 * time.Second

	statusSuccess = "success"
	statusError   = "error"
)

// Backend fetches raw One Call payloads. weather.Service and HTTPBackend
// implement it.
type Backend interface {
	Current(ctx context.Context, req weather.Request) (json.RawMessage, error)
	Forecast(ctx context.Context, req weather.Request) (json.RawMessage, error)
}

// Options configures a Dispatcher.
type Options struct {
	ServerName    string
	ServerVersion string
	ToolTimeout   time.Duration
	DefaultUnits  string
	Logger        *zap.Logger
	Metrics       *metrics.Registry
	Tracer        *tracing.Tracer
}

// Dispatcher routes JSON-RPC requests to the weather tools. It holds no
// per-request state and is safe for concurrent use.
type Dispatcher struct {
	backend      Backend
	info         mcp.ServerInfo
	toolTimeout  time.Duration
	defaultUnits string
	logger       *zap.Logger
	metrics      *metrics.Registry
	tracer       *tracing.Tracer
}

// New creates a dispatcher over backend.
func New(backend Backend, opts Options) *Dispatcher {
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = defaultToolTimeout
	}

	if opts.ServerName == "" {
		opts.ServerName = "weather-mcp-server"
	}

	if opts.ServerVersion == "" {
		opts.ServerVersion = "1.0.0"
	}

	if opts.DefaultUnits == "" {
		opts.DefaultUnits = weather.DefaultUnits
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if opts.Metrics == nil {
		opts.Metrics = metrics.InitializeMetricsRegistry()
	}

	if opts.Tracer == nil {
		opts.Tracer = tracing.NewNoopTracer(opts.Logger)
	}

	return &Dispatcher{
		backend:      backend,
		info:         mcp.ServerInfo{Name: opts.ServerName, Version: opts.ServerVersion},
		toolTimeout:  opts.ToolTimeout,
		defaultUnits: opts.DefaultUnits,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		tracer:       opts.Tracer,
	}
}

// Handle processes one raw JSON-RPC message. The boolean is false when no
// response must be written (notifications).
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) (*mcp.Response, bool) {
	raw = bytes.TrimSpace(raw)

	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		parseErr := errors.NewParseError(err)
		d.recordRequest(ctx, "", time.Now(), parseErr)

		return d.errorResponse(ctx, parseErr, nil), true
	}

	var req mcp.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		invalid := errors.NewInvalidRequestError(err.Error())
		d.recordRequest(ctx, "", time.Now(), invalid)

		return d.errorResponse(ctx, invalid, nil), true
	}

	return d.HandleRequest(ctx, &req)
}

// HandleRequest processes an already decoded request.
func (d *Dispatcher) HandleRequest(ctx context.Context, req *mcp.Request) (*mcp.Response, bool) {
	start := time.Now()

	if req.Method == "" {
		err := errors.NewInvalidRequestError("missing method")
		d.recordRequest(ctx, "", start, err)

		return d.errorResponse(ctx, err, req.ID), true
	}

	ctx = logging.ContextWithMethod(ctx, req.Method)

	if req.IsNotification() {
		logging.LogDebug(ctx, d.logger, "Ignoring notification")

		return nil, false
	}

	ctx, span := d.tracer.StartSpan(ctx, "mcp."+req.Method,
		attribute.String("rpc.method", req.Method),
		attribute.String("rpc.jsonrpc.request_id", string(req.ID)),
	)
	defer span.End()

	result, err := d.route(ctx, req)
	d.recordRequest(ctx, req.Method, start, err)

	if err != nil {
		d.tracer.RecordError(ctx, err)

		return d.errorResponse(ctx, err, req.ID), true
	}

	return mcp.NewResponse(result, req.ID), true
}

func (d *Dispatcher) route(ctx context.Context, req *mcp.Request) (interface{}, error) {
	switch req.Method {
	case mcp.MethodInitialize:
		return &mcp.InitializeResult{
			ProtocolVersion: mcp.ProtocolVersion,
			Capabilities:    mcp.Capabilities{Tools: &mcp.ToolsCapability{}},
			ServerInfo:      d.info,
		}, nil
	case mcp.MethodPing:
		return struct{}{}, nil
	case mcp.MethodToolsList:
		return &mcp.ListToolsResult{Tools: Tools()}, nil
	case mcp.MethodToolsCall:
		var params mcp.CallToolParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return nil, errors.NewInvalidArgumentError("params", "must be an object with a tool name")
			}
		}

		return d.CallTool(ctx, params.Name, params.Arguments)
	case mcp.MethodResourcesList:
		return &mcp.ListResourcesResult{Resources: []interface{}{}}, nil
	case mcp.MethodPromptsList:
		return &mcp.ListPromptsResult{Prompts: []interface{}{}}, nil
	default:
		return nil, errors.NewMethodNotFoundError(req.Method)
	}
}

// CallTool runs a tool and wraps its output as MCP text content.
func (d *Dispatcher) CallTool(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	if !isKnownTool(name) {
		d.metrics.IncrementToolCalls("unknown", statusError)

		return nil, errors.NewUnknownToolError(name)
	}

	ctx = logging.ContextWithTool(ctx, name)

	req, err := parseToolArguments(args)
	if err != nil {
		d.metrics.IncrementToolCalls(name, statusError)

		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.toolTimeout)
	defer cancel()

	text, err := d.runTool(ctx, name, req)
	if err != nil {
		d.metrics.IncrementToolCalls(name, statusError)

		return nil, err
	}

	d.metrics.IncrementToolCalls(name, statusSuccess)

	return mcp.TextResult(text), nil
}

func (d *Dispatcher) runTool(ctx context.Context, name string, req weather.Request) (string, error) {
	switch name {
	case ToolGetForecast:
		raw, err := d.backend.Forecast(ctx, req)
		if err != nil {
			return "", err
		}

		report, err := weather.FormatForecast(raw)
		if err != nil {
			return "", err
		}

		return indent(report)
	case ToolGetCurrentWeather:
		raw, err := d.backend.Current(ctx, req)
		if err != nil {
			return "", err
		}

		report, err := weather.FormatCurrent(raw)
		if err != nil {
			return "", err
		}

		units := req.Units
		if units == "" {
			units = d.defaultUnits
		}

		return weather.RenderCurrentText(label(req), units, report), nil
	default:
		raw, err := d.backend.Current(ctx, req)
		if err != nil {
			return "", err
		}

		report, err := weather.FormatCurrent(raw)
		if err != nil {
			return "", err
		}

		return indent(report)
	}
}

// CallToolRaw runs a tool and returns the provider payload unformatted.
func (d *Dispatcher) CallToolRaw(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	if !isKnownTool(name) {
		return nil, errors.NewUnknownToolError(name)
	}

	req, err := parseToolArguments(args)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(logging.ContextWithTool(ctx, name), d.toolTimeout)
	defer cancel()

	if name == ToolGetForecast {
		return d.backend.Forecast(ctx, req)
	}

	return d.backend.Current(ctx, req)
}

func indent(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.WrapWithType(err, errors.TypeInternal, "failed to encode tool result")
	}

	return string(data), nil
}

// errorResponse converts err into a JSON-RPC error object.
func (d *Dispatcher) errorResponse(ctx context.Context, err error, id json.RawMessage) *mcp.Response {
	code := errors.JSONRPCCode(err)

	var message string

	switch code {
	case mcp.ErrorCodeParseError:
		message = "Parse error"
		id = nil
	case mcp.ErrorCodeInvalidRequest:
		message = "Invalid Request"
	case mcp.ErrorCodeMethodNotFound:
		message = errors.PublicMessage(err)
	default:
		message = "Internal error: " + errors.PublicMessage(err)
	}

	logging.LogError(ctx, d.logger, "JSON-RPC request failed", err, zap.Int("rpc_code", code))

	if len(id) == 0 {
		id = json.RawMessage("null")
	}

	return mcp.NewErrorResponse(code, message, nil, id)
}

func (d *Dispatcher) recordRequest(ctx context.Context, method string, start time.Time, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError

		errors.RecordError(err, d.metrics)
	}

	transport := logging.GetTransport(ctx)
	if transport == "" {
		transport = "unknown"
	}

	d.metrics.RecordRequest(transport, method, status, time.Since(start))
}
