package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spboyer/promptplus/internal/dispatch"
	"github.com/spboyer/promptplus/internal/jsonrpc"
	"github.com/spboyer/promptplus/internal/models"
)

const protocolVersion = "2024-11-05"

// Version is reported in serverInfo. The CLI overrides it at startup.
var Version = "0.0.0-dev"

// Server handles MCP protocol messages by delegating to the JSON-RPC handlers.
type Server struct {
	d      *dispatch.Dispatcher
	reg    *jsonrpc.MethodRegistry
	logger *slog.Logger
}

// NewServer creates an MCP server over d.
func NewServer(d *dispatch.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := jsonrpc.NewMethodRegistry()
	jsonrpc.RegisterHandlers(reg, jsonrpc.NewHandlerContext(d))
	return &Server{d: d, reg: reg, logger: logger}
}

// HandleRequest processes a single MCP JSON-RPC request and returns a response.
func (s *Server) HandleRequest(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgement, no response for notifications.
		return nil
	case "ping":
		return result(req, struct{}{})
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "prompts/list":
		return s.handlePromptsList(req)
	case "prompts/get":
		return s.handlePromptsGet(req)
	default:
		return &jsonrpc.Response{
			JSONRPC: "2.0",
			Error:   jsonrpc.ErrMethodNotFound(req.Method),
			ID:      req.ID,
		}
	}
}

func result(req *jsonrpc.Request, v any) *jsonrpc.Response {
	return &jsonrpc.Response{JSONRPC: "2.0", Result: v, ID: req.ID}
}

func failure(req *jsonrpc.Request, rpcErr *jsonrpc.Error) *jsonrpc.Response {
	return &jsonrpc.Response{JSONRPC: "2.0", Error: rpcErr, ID: req.ID}
}

// --- initialize ---

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    capabilities `json:"capabilities"`
	ServerInfo      serverInfo   `json:"serverInfo"`
}

type capabilities struct {
	Tools   *listCap `json:"tools,omitempty"`
	Prompts *listCap `json:"prompts,omitempty"`
}

type listCap struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (s *Server) handleInitialize(req *jsonrpc.Request) *jsonrpc.Response {
	return result(req, initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    capabilities{Tools: &listCap{}, Prompts: &listCap{}},
		ServerInfo:      serverInfo{Name: "promptplus", Version: Version},
	})
}

// --- tools/list ---

type toolsListResult struct {
	Tools []Tool `json:"tools"`
}

func (s *Server) handleToolsList(req *jsonrpc.Request) *jsonrpc.Response {
	return result(req, toolsListResult{Tools: ToolsDef(s.d.Catalog().Keys())})
}

// --- tools/call ---

type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolsCallResult struct {
	Content []contentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *Server) handleToolsCall(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var p toolsCallParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return failure(req, jsonrpc.ErrInvalidParams(err.Error()))
	}

	logger := s.logger.With("call_id", uuid.NewString(), "tool", p.Name)
	logger.Debug("tool call")

	res, rpcErr := s.dispatchTool(ctx, p.Name, p.Arguments)
	if rpcErr != nil {
		logger.Debug("tool call failed", "code", rpcErr.Code, "error", rpcErr.Message)
		return result(req, errorResult(rpcErr))
	}

	text, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return result(req, errorResult(jsonrpc.ErrInternalError(fmt.Sprintf("marshal error: %v", err))))
	}
	return result(req, toolsCallResult{
		Content: []contentBlock{{Type: "text", Text: string(text)}},
	})
}

// errorResult renders a failed tool call as an ErrorRecord in text content.
func errorResult(rpcErr *jsonrpc.Error) toolsCallResult {
	rec := toErrorRecord(rpcErr)
	text, err := json.Marshal(rec)
	if err != nil {
		text = []byte(rec.Error)
	}
	return toolsCallResult{
		Content: []contentBlock{{Type: "text", Text: string(text)}},
		IsError: true,
	}
}

func toErrorRecord(rpcErr *jsonrpc.Error) models.ErrorRecord {
	if rec, ok := rpcErr.Data.(models.ErrorRecord); ok {
		return rec
	}
	msg := rpcErr.Message
	if rpcErr.Data != nil {
		msg = fmt.Sprintf("%s: %v", msg, rpcErr.Data)
	}
	code := models.CodeInternal
	switch rpcErr.Code {
	case jsonrpc.CodeInvalidParams, jsonrpc.CodeValidationFailed, jsonrpc.CodeMethodNotFound:
		code = models.CodeInvalidArguments
	}
	return models.ErrorRecord{Error: msg, Code: code}
}

// toolMethods maps MCP tool names to the JSON-RPC methods that serve them.
var toolMethods = map[string]string{
	"list_strategies":        "strategy.list",
	"get_strategy_details":   "strategy.get",
	"auto_select_strategy":   "strategy.select",
	"compare_strategies":     "strategy.compare",
	"refine_prompt":          "prompt.refine",
	"auto_refine":            "prompt.auto",
	"generate_router_prompt": "prompt.router",
	"parse_refinement":       "response.parse",
}

func (s *Server) dispatchTool(ctx context.Context, name string, args json.RawMessage) (any, *jsonrpc.Error) {
	method, ok := toolMethods[name]
	if !ok {
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: fmt.Sprintf("unknown tool: %s", name)}
	}
	if name == "list_strategies" {
		// The tool returns the bare key → summary map.
		return s.d.ListStrategies(), nil
	}
	return s.callHandler(ctx, method, args)
}

// callHandler delegates to the JSON-RPC method handler.
func (s *Server) callHandler(ctx context.Context, method string, args json.RawMessage) (any, *jsonrpc.Error) {
	handler := s.reg.Lookup(method)
	if handler == nil {
		return nil, jsonrpc.ErrMethodNotFound(method)
	}
	if args == nil {
		args = json.RawMessage(`{}`)
	}
	return handler(ctx, args)
}
