package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		params         interface{}
		id             interface{}
		expectedID     string
		expectedParams string
		notification   bool
	}{
		{
			name:       "string id",
			method:     MethodInitialize,
			id:         "test-123",
			expectedID: `"test-123"`,
		},
		{
			name:       "numeric id",
			method:     MethodToolsList,
			id:         42,
			expectedID: `42`,
		},
		{
			name:   "call params",
			method: MethodToolsCall,
			params: map[string]interface{}{
				"name":      "get_weather",
				"arguments": map[string]interface{}{"latitude": 1.5},
			},
			id:             1,
			expectedID:     `1`,
			expectedParams: `{"arguments":{"latitude":1.5},"name":"get_weather"}`,
		},
		{
			name:         "nil id is a notification",
			method:       "notifications/initialized",
			notification: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.method, tt.params, tt.id)
			require.NoError(t, err)

			assert.Equal(t, JSONRPCVersion, req.JSONRPC)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.notification, req.IsNotification())

			if tt.expectedID != "" {
				assert.JSONEq(t, tt.expectedID, string(req.ID))
			}

			if tt.expectedParams != "" {
				assert.JSONEq(t, tt.expectedParams, string(req.Params))
			}
		})
	}
}

func TestRequestIsNotification(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected bool
	}{
		{name: "missing id", payload: `{"jsonrpc":"2.0","method":"ping"}`, expected: true},
		{name: "null id", payload: `{"jsonrpc":"2.0","method":"ping","id":null}`, expected: true},
		{name: "zero id", payload: `{"jsonrpc":"2.0","method":"ping","id":0}`, expected: false},
		{name: "string id", payload: `{"jsonrpc":"2.0","method":"ping","id":"a"}`, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &req))
			assert.Equal(t, tt.expected, req.IsNotification())
		})
	}
}

func TestResponseEncoding(t *testing.T) {
	t.Run("error response keeps null id", func(t *testing.T) {
		resp := NewErrorResponse(ErrorCodeParseError, "Parse error", nil, nil)

		data, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error"},"id":null}`, string(data))
	})

	t.Run("result response echoes id", func(t *testing.T) {
		resp := NewResponse(TextResult("hello"), json.RawMessage(`7`))

		data, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"jsonrpc":"2.0","result":{"content":[{"type":"text","text":"hello"}]},"id":7}`,
			string(data))
	})

	t.Run("empty capability object is kept", func(t *testing.T) {
		result := InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    Capabilities{Tools: &ToolsCapability{}},
			ServerInfo:      ServerInfo{Name: "weather-mcp-server", Version: "1.0.0"},
		}

		data, err := json.Marshal(result)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"protocolVersion":"2024-11-05","capabilities":{"tools":{}},"serverInfo":{"name":"weather-mcp-server","version":"1.0.0"}}`,
			string(data))
	})
}

func TestErrorString(t *testing.T) {
	err := &Error{Code: ErrorCodeMethodNotFound, Message: "Method not found: foo"}
	assert.Equal(t, "json-rpc error -32601: Method not found: foo", err.Error())
}
