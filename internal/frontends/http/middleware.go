package http

import (
	"bufio"
	"fmt"
	"net"
	nethttp "net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/logging"
)

const headerRequestID = "X-Request-ID"

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	nethttp.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() nethttp.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is needed by the WebSocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(nethttp.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}

	r.status = nethttp.StatusSwitchingProtocols

	return hijacker.Hijack()
}

// requestIDMiddleware puts trace and request IDs in the context and echoes the
// request ID back.
func (f *Frontend) requestIDMiddleware(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		ctx := logging.ContextWithTracing(r.Context(), logging.GenerateTraceID(), requestID)
		ctx = logging.ContextWithTransport(ctx, transportName)

		w.Header().Set(headerRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// corsMiddleware sets CORS headers on every response and answers preflight
// requests itself.
func (f *Frontend) corsMiddleware(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", f.opts.Config.AllowedOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+headerRequestID)

		if r.Method == nethttp.MethodOptions {
			w.WriteHeader(nethttp.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request counts, latency and in-flight requests,
// labelled by route template.
func (f *Frontend) metricsMiddleware(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()

		f.metrics.IncrementRequestsInFlight()
		defer f.metrics.DecrementRequestsInFlight()

		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}

		next.ServeHTTP(rec, r)

		route := f.routeName(r)
		status := "success"

		if rec.status >= nethttp.StatusBadRequest {
			status = "error"
			f.metrics.IncrementErrorsByHTTPStatus(rec.status)
		}

		f.metrics.RecordRequest(transportName, r.Method+" "+route, status, time.Since(start))

		ctx := logging.ContextWithMethod(r.Context(), r.Method+" "+route)
		logging.LogRequestComplete(ctx, f.logger,
			zap.Int(logging.FieldStatusCode, rec.status),
			zap.String(logging.FieldRemoteAddr, r.RemoteAddr),
		)
	})
}

// routeName returns the matched route template so label cardinality stays
// bounded. Unmatched paths share one label.
func (f *Frontend) routeName(r *nethttp.Request) string {
	var match mux.RouteMatch
	if f.router.Match(r, &match) && match.Route != nil {
		if tmpl, err := match.Route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}

	return "unmatched"
}
