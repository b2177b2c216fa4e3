package jsonrpc

import (
	"encoding/json"
	"errors"

	"github.com/spboyer/promptplus/internal/models"
)

// JSON-RPC 2.0 types per https://www.jsonrpc.org/specification

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Notification represents a server-initiated JSON-RPC 2.0 notification (no ID).
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// MethodCatalogLoaded announces the loaded catalog at the start of a session.
const MethodCatalogLoaded = "catalog.loaded"

// CatalogLoadedParams are the params of a catalog.loaded notification.
type CatalogLoadedParams struct {
	Strategies int `json:"strategies"`
	Warnings   int `json:"warnings"`
}

// CatalogLoaded builds the catalog.loaded notification.
func CatalogLoaded(strategies, warnings int) *Notification {
	return &Notification{
		JSONRPC: "2.0",
		Method:  MethodCatalogLoaded,
		Params:  CatalogLoadedParams{Strategies: strategies, Warnings: warnings},
	}
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application-specific error codes.
const (
	CodeStrategyNotFound = -32000
	CodeValidationFailed = -32001
)

func ErrParseError(data any) *Error {
	return &Error{Code: CodeParseError, Message: "Parse error", Data: data}
}

func ErrInvalidRequest(data any) *Error {
	return &Error{Code: CodeInvalidRequest, Message: "Invalid request", Data: data}
}

func ErrMethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: "Method not found", Data: method}
}

func ErrInvalidParams(data any) *Error {
	return &Error{Code: CodeInvalidParams, Message: "Invalid params", Data: data}
}

func ErrInternalError(data any) *Error {
	return &Error{Code: CodeInternalError, Message: "Internal error", Data: data}
}

func ErrStrategyNotFound(key string) *Error {
	rec := models.NewErrorRecord(&models.NotFoundError{Key: key})
	return &Error{Code: CodeStrategyNotFound, Message: "Strategy not found", Data: rec}
}

func ErrValidationFailed(data any) *Error {
	return &Error{Code: CodeValidationFailed, Message: "Validation failed", Data: data}
}

// FromError maps an operation error to a JSON-RPC error. Unknown strategy
// keys become CodeStrategyNotFound; anything else is an internal error.
func FromError(err error) *Error {
	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		return ErrStrategyNotFound(nf.Key)
	}
	return ErrInternalError(err.Error())
}
