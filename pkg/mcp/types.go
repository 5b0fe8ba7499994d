// Package mcp defines the JSON-RPC 2.0 envelope and the MCP message shapes spoken by the weather server.
package mcp

import (
	"encoding/json"
	"fmt"
)

const (
	// JSONRPCVersion is the only protocol version accepted on the wire.
	JSONRPCVersion = "2.0"
	// ProtocolVersion is the MCP revision advertised by initialize.
	ProtocolVersion = "2024-11-05"
)

// Standard error codes.
const (
	ErrorCodeParseError     = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternalError  = -32603
)

// Method names.
const (
	MethodInitialize    = "initialize"
	MethodPing          = "ping"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesList = "resources/list"
	MethodPromptsList   = "prompts/list"
)

// Request represents an MCP request message.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// IsNotification reports whether the request carries no id (absent or null).
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// Response represents an MCP response message.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error represents a JSON-RPC error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema interface{} `json:"inputSchema"`
}

// InitializeResult represents the result of the initialize method.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// Capabilities represents MCP capabilities.
type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability represents tools capability details.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerInfo represents server information.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ListToolsResult represents the result of tools/list method.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// ListResourcesResult is the (always empty) result of resources/list.
type ListResourcesResult struct {
	Resources []interface{} `json:"resources"`
}

// ListPromptsResult is the (always empty) result of prompts/list.
type ListPromptsResult struct {
	Prompts []interface{} `json:"prompts"`
}

// CallToolParams represents parameters for tools/call method.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult represents the result of tools/call method.
type CallToolResult struct {
	Content []ToolContent `json:"content"`
}

// ToolContent represents content returned by a tool.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextResult wraps text as a single-item tool result.
func TextResult(text string) *CallToolResult {
	return &CallToolResult{
		Content: []ToolContent{{Type: "text", Text: text}},
	}
}

// NewRequest creates a new MCP request. A nil id produces a notification.
func NewRequest(method string, params interface{}, id interface{}) (*Request, error) {
	req := &Request{
		JSONRPC: JSONRPCVersion,
		Method:  method,
	}

	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}

		req.Params = raw
	}

	if id != nil {
		raw, err := json.Marshal(id)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal id: %w", err)
		}

		req.ID = raw
	}

	return req, nil
}

// NewResponse creates a new MCP response.
func NewResponse(result interface{}, id json.RawMessage) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		Result:  result,
		ID:      id,
	}
}

// NewErrorResponse creates a new MCP error response.
func NewErrorResponse(code int, message string, data interface{}, id json.RawMessage) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
}
