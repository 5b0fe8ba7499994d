// Package stdio serves newline-delimited JSON-RPC over a reader and writer
// pair, normally the process's stdin and stdout.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/errors"
	"github.com/actual-software/weather-mcp/internal/logging"
	"github.com/actual-software/weather-mcp/pkg/mcp"
)

const (
	transportName = "stdio"

	defaultRequestTimeout = 30 * time.Second
	initialBufferSize     = 64 * 1024
	maxLineSize           = 4 * 1024 * 1024
)

// Handler processes raw JSON-RPC messages.
type Handler interface {
	Handle(ctx context.Context, raw []byte) (*mcp.Response, bool)
}

// Frontend reads one request per line and writes one response per line.
type Frontend struct {
	handler Handler
	in      io.Reader
	out     io.Writer
	timeout time.Duration
	logger  *zap.Logger
}

// CreateStdioFrontend creates a frontend over in and out. A non-positive
// timeout selects the 30 second default.
func CreateStdioFrontend(handler Handler, in io.Reader, out io.Writer, timeout time.Duration, logger *zap.Logger) *Frontend {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Frontend{
		handler: handler,
		in:      in,
		out:     out,
		timeout: timeout,
		logger:  logger.With(zap.String(logging.FieldTransport, transportName)),
	}
}

type line struct {
	data []byte
	err  error
}

// Serve processes requests until the input ends or ctx is canceled. Reaching
// EOF is not an error.
func (f *Frontend) Serve(ctx context.Context) error {
	lines := make(chan line)

	go f.scan(ctx, lines)

	f.logger.Info("stdio frontend started")

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("stdio frontend stopped", zap.Error(ctx.Err()))

			return nil
		case l, ok := <-lines:
			if !ok {
				f.logger.Info("stdin closed, stopping")

				return nil
			}

			if l.err != nil {
				return errors.Wrap(l.err, "failed to read stdin").WithComponent(transportName)
			}

			if err := f.process(ctx, l.data); err != nil {
				return err
			}
		}
	}
}

// scan reads input lines. The reader goroutine cannot be interrupted while
// blocked in Read, so it exits when the next line fails to send.
func (f *Frontend) scan(ctx context.Context, lines chan<- line) {
	defer close(lines)

	scanner := bufio.NewScanner(f.in)
	scanner.Buffer(make([]byte, initialBufferSize), maxLineSize)

	for scanner.Scan() {
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		buf := make([]byte, len(data))
		copy(buf, data)

		select {
		case lines <- line{data: buf}:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case lines <- line{err: err}:
		case <-ctx.Done():
		}
	}
}

func (f *Frontend) process(ctx context.Context, data []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	reqCtx = logging.ContextWithTransport(reqCtx, transportName)
	reqCtx = logging.ContextWithTracing(reqCtx, logging.GenerateTraceID(), logging.GenerateRequestID())

	resp, ok := f.handler.Handle(reqCtx, data)

	logging.LogRequestComplete(reqCtx, f.logger, zap.Bool("notification", !ok))

	if !ok {
		return nil
	}

	return f.write(resp)
}

func (f *Frontend) write(resp *mcp.Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return errors.WrapWithType(err, errors.TypeInternal, "failed to encode response").
			WithComponent(transportName)
	}

	payload = append(payload, '\n')

	if _, err := f.out.Write(payload); err != nil {
		return errors.Wrap(err, "failed to write stdout").WithComponent(transportName)
	}

	return nil
}
