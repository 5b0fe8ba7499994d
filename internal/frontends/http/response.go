package http

import (
	"encoding/json"
	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/logging"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// envelope wraps every REST response.
type envelope struct {
	Status  string      `json:"status"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (f *Frontend) writeJSON(w nethttp.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (f *Frontend) writeSuccess(w nethttp.ResponseWriter, data interface{}) {
	f.writeJSON(w, nethttp.StatusOK, envelope{Status: statusSuccess, Success: true, Data: data})
}

// writeError maps err onto an HTTP status through the error taxonomy.
func (f *Frontend) writeError(w nethttp.ResponseWriter, r *nethttp.Request, err error) {
	status := errors.GetHTTPStatus(err)

	errors.RecordError(err, f.metrics)
	logging.LogError(r.Context(), f.logger, "Request failed", err,
		zap.String(logging.FieldURL, r.URL.Path),
		zap.Int(logging.FieldStatusCode, status),
	)

	f.writeJSON(w, status, envelope{
		Status:  statusError,
		Success: false,
		Error:   errors.PublicMessage(err),
	})
}
