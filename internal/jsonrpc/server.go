package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

// RequestHandler answers one decoded request. Returning nil writes nothing.
type RequestHandler interface {
	HandleRequest(ctx context.Context, req *Request) *Response
}

// Server dispatches JSON-RPC 2.0 requests to the methods in a registry.
type Server struct {
	registry *MethodRegistry
	logger   *slog.Logger
}

// NewServer creates a JSON-RPC server with the given method registry.
func NewServer(registry *MethodRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{registry: registry, logger: logger}
}

// HandleRequest validates the envelope and runs the registered method.
func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != "2.0" {
		return &Response{JSONRPC: "2.0", Error: ErrInvalidRequest("jsonrpc field must be \"2.0\""), ID: req.ID}
	}

	handler := s.registry.Lookup(req.Method)
	if handler == nil {
		return &Response{JSONRPC: "2.0", Error: ErrMethodNotFound(req.Method), ID: req.ID}
	}

	s.logger.Debug("jsonrpc call", "method", req.Method)
	result, rpcErr := handler(ctx, req.Params)
	resp := &Response{JSONRPC: "2.0", ID: req.ID}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	return resp
}

// ServeStdio runs the server on the given reader and writer until the
// reader is exhausted or ctx is canceled.
func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) {
	Serve(ctx, NewTransport(stdin, stdout), s, s.logger)
}

// Serve reads requests from t and writes h's responses. Notifications (no
// "id" member) are executed but never answered. A malformed line is
// answered with a parse error and ends the session.
func Serve(ctx context.Context, t *Transport, h RequestHandler, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	for ctx.Err() == nil {
		req, rawJSON, err := t.ReadRequest()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			logger.Debug("read error", "error", err)
			resp := &Response{
				JSONRPC: "2.0",
				Error:   ErrParseError(err.Error()),
				ID:      json.RawMessage("null"),
			}
			if writeErr := t.WriteResponse(resp); writeErr != nil {
				logger.Debug("write error", "error", writeErr)
			}
			return
		}

		isNotification := !hasIDField(rawJSON)

		resp := h.HandleRequest(ctx, req)
		if resp == nil || isNotification {
			continue
		}

		if writeErr := t.WriteResponse(resp); writeErr != nil {
			logger.Debug("write error", "error", writeErr)
			return
		}
	}
}

// hasIDField reports whether the raw JSON has a top-level "id" key.
func hasIDField(raw []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	_, exists := obj["id"]
	return exists
}
