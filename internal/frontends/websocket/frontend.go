// Package websocket serves JSON-RPC over a WebSocket connection. Each text
// frame carries one request and gets at most one response frame.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/auth"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/internal/metrics"
	"github.com/actual-software/weather-mcp/pkg/mcp"
)

const (
	transportName = "websocket"

	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultPingPeriod     = 30 * time.Second
	defaultMaxMessageSize = 1 << 20
	defaultWriteChSize    = 16
	defaultBufferSize     = 4096
)

// Handler processes raw JSON-RPC messages.
type Handler interface {
	Handle(ctx context.Context, raw []byte) (*mcp.Response, bool)
}

// Config holds WebSocket-specific settings.
type Config struct {
	AllowedOrigin  string
	MaxMessageSize int64
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}

	if c.PongWait <= 0 {
		c.PongWait = defaultPongWait
	}

	if c.PingPeriod <= 0 {
		c.PingPeriod = defaultPingPeriod
	}

	if c.PingPeriod >= c.PongWait {
		c.PingPeriod = c.PongWait / 2
	}

	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
}

// Frontend upgrades HTTP requests and serves JSON-RPC on the connection.
type Frontend struct {
	config   Config
	handler  Handler
	auth     auth.Provider
	metrics  *metrics.Registry
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	connections map[*connection]struct{}
}

// CreateWebSocketFrontend creates a frontend. A nil provider disables auth.
func CreateWebSocketFrontend(
	config Config,
	handler Handler,
	provider auth.Provider,
	reg *metrics.Registry,
	logger *zap.Logger,
) *Frontend {
	config.ApplyDefaults()

	if reg == nil {
		reg = metrics.InitializeMetricsRegistry()
	}

	return &Frontend{
		config:      config,
		handler:     handler,
		auth:        provider,
		metrics:     reg,
		logger:      logger.With(zap.String(logging.FieldTransport, transportName)),
		connections: make(map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  defaultBufferSize,
			WriteBufferSize: defaultBufferSize,
			CheckOrigin:     makeOriginChecker(config.AllowedOrigin),
		},
	}
}

// connection is one upgraded client.
type connection struct {
	conn    *websocket.Conn
	writeCh chan []byte
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
}

// ServeHTTP handles the upgrade and blocks until the connection closes.
func (f *Frontend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := logging.ContextWithTransport(r.Context(), transportName)

	if f.auth != nil {
		claims, err := f.auth.Authenticate(r)
		if err != nil {
			f.metrics.IncrementAuthFailures("invalid_token")
			logging.LogError(ctx, f.logger, "Authentication failed", err,
				zap.String(logging.FieldRemoteAddr, r.RemoteAddr))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)

			return
		}

		if !claims.HasScope(auth.ScopeToolsCall) {
			f.metrics.IncrementAuthFailures("missing_scope")
			http.Error(w, "Forbidden", http.StatusForbidden)

			return
		}
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		logging.LogError(ctx, f.logger, "WebSocket upgrade failed", err)

		return
	}

	// The request context is canceled once ServeHTTP returns, so the
	// connection keeps its own context but carries the request values.
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	client := &connection{
		conn:    conn,
		writeCh: make(chan []byte, defaultWriteChSize),
		done:    make(chan struct{}),
		ctx:     connCtx,
		cancel:  cancel,
		logger:  f.logger.With(zap.String(logging.FieldRemoteAddr, r.RemoteAddr)),
	}

	f.register(client)
	defer f.unregister(client)

	client.logger.Info("Client connected")

	go f.handleClientWrite(client)

	f.handleClientRead(client)
	<-client.done

	client.logger.Info("Client disconnected")
}

func (f *Frontend) register(client *connection) {
	f.mu.Lock()
	f.connections[client] = struct{}{}
	f.mu.Unlock()

	f.metrics.IncrementWebSocketConnections()
}

func (f *Frontend) unregister(client *connection) {
	f.mu.Lock()
	delete(f.connections, client)
	f.mu.Unlock()

	f.metrics.DecrementWebSocketConnections()
}

// ActiveConnections returns the number of open connections.
func (f *Frontend) ActiveConnections() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.connections)
}

// Close drops every open connection. http.Server.Shutdown does not track
// hijacked connections, so the server registers this as a shutdown hook.
func (f *Frontend) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for client := range f.connections {
		client.cancel()
		_ = client.conn.Close()
	}
}

// handleClientRead reads request frames until the peer goes away.
func (f *Frontend) handleClientRead(client *connection) {
	defer close(client.writeCh)
	defer client.cancel()

	client.conn.SetReadLimit(f.config.MaxMessageSize)

	if err := client.conn.SetReadDeadline(time.Now().Add(f.config.PongWait)); err != nil {
		client.logger.Warn("Failed to set read deadline", zap.Error(err))
	}

	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(f.config.PongWait))
	})

	for {
		messageType, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				client.logger.Warn("WebSocket read error", zap.Error(err))
			}

			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		f.metrics.IncrementWebSocketMessages("inbound")

		ctx := logging.ContextWithTracing(client.ctx, logging.GenerateTraceID(), logging.GenerateRequestID())

		resp, ok := f.handler.Handle(ctx, data)
		if !ok {
			continue
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			logging.LogError(ctx, client.logger, "Failed to encode response", err)

			continue
		}

		select {
		case client.writeCh <- payload:
		case <-client.ctx.Done():
			return
		}
	}
}

// handleClientWrite owns all writes on the connection, including pings.
func (f *Frontend) handleClientWrite(client *connection) {
	defer close(client.done)
	defer func() { _ = client.conn.Close() }()

	ticker := time.NewTicker(f.config.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.writeCh:
			if !ok {
				f.writeClose(client)

				return
			}

			if err := f.write(client, websocket.TextMessage, msg); err != nil {
				client.logger.Warn("WebSocket write failed", zap.Error(err))
				client.cancel()

				return
			}

			f.metrics.IncrementWebSocketMessages("outbound")
		case <-ticker.C:
			if err := f.write(client, websocket.PingMessage, nil); err != nil {
				client.logger.Debug("Ping failed", zap.Error(err))
				client.cancel()

				return
			}
		}
	}
}

func (f *Frontend) write(client *connection, messageType int, data []byte) error {
	if err := client.conn.SetWriteDeadline(time.Now().Add(f.config.WriteWait)); err != nil {
		return err
	}

	return client.conn.WriteMessage(messageType, data)
}

func (f *Frontend) writeClose(client *connection) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = client.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(f.config.WriteWait))
}

// makeOriginChecker allows every origin for "*" or an empty setting.
func makeOriginChecker(allowed string) func(*http.Request) bool {
	if allowed == "" || allowed == "*" {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		return origin == "" || origin == allowed
	}
}
