package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/promptplus/internal/dispatch"
	"github.com/spboyer/promptplus/internal/models"
)

// HandlerContext provides shared state for method handlers.
type HandlerContext struct {
	d *dispatch.Dispatcher
}

// NewHandlerContext creates a handler context over d.
func NewHandlerContext(d *dispatch.Dispatcher) *HandlerContext {
	return &HandlerContext{d: d}
}

// Dispatcher returns the dispatcher the handlers delegate to.
func (h *HandlerContext) Dispatcher() *dispatch.Dispatcher {
	return h.d
}

// RegisterHandlers registers all strategy/prompt/response method handlers.
func RegisterHandlers(registry *MethodRegistry, hctx *HandlerContext) {
	registry.Register("strategy.list", hctx.handleStrategyList)
	registry.Register("strategy.get", hctx.handleStrategyGet)
	registry.Register("strategy.select", hctx.handleStrategySelect)
	registry.Register("strategy.compare", hctx.handleStrategyCompare)
	registry.Register("prompt.refine", hctx.handlePromptRefine)
	registry.Register("prompt.auto", hctx.handlePromptAuto)
	registry.Register("prompt.router", hctx.handlePromptRouter)
	registry.Register("response.parse", hctx.handleResponseParse)
}

// DecodeParams decodes JSON params into out. Values are weakly typed, so
// numbers and booleans may arrive as strings, and a comma-separated string
// is accepted wherever a list of strings is expected. Absent or null
// params decode as an empty object.
func DecodeParams(params json.RawMessage, out any) *Error {
	raw := map[string]any{}
	if len(params) > 0 && string(params) != "null" {
		if err := json.Unmarshal(params, &raw); err != nil {
			return ErrInvalidParams(err.Error())
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       commaListHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return ErrInternalError(err.Error())
	}
	if err := dec.Decode(raw); err != nil {
		return ErrInvalidParams(err.Error())
	}
	return nil
}

var stringSliceType = reflect.TypeOf([]string(nil))

// commaListHook turns "a, b" into []string{"a", "b"}. A string holding no
// keys, such as "" or " , ", becomes an empty non-nil slice: the caller
// named the list, so it is never mistaken for an omitted one.
func commaListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != stringSliceType {
		return data, nil
	}
	if keys := dispatch.SplitKeys(data.(string)); keys != nil {
		return keys, nil
	}
	return []string{}, nil
}

func required(name string, v *string) *Error {
	if v == nil {
		return ErrValidationFailed(fmt.Sprintf("%s is required", name))
	}
	return nil
}

// --- strategy.list ---

type StrategyListResult struct {
	Strategies map[string]models.StrategySummary `json:"strategies"`
	Count      int                               `json:"count"`
}

func (h *HandlerContext) handleStrategyList(_ context.Context, _ json.RawMessage) (any, *Error) {
	list := h.d.ListStrategies()
	return &StrategyListResult{Strategies: list, Count: len(list)}, nil
}

// --- strategy.get ---

type StrategyGetParams struct {
	Strategy *string `json:"strategy"`
}

func (h *HandlerContext) handleStrategyGet(_ context.Context, params json.RawMessage) (any, *Error) {
	var p StrategyGetParams
	if rpcErr := DecodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := required("strategy", p.Strategy); rpcErr != nil {
		return nil, rpcErr
	}
	details, err := h.d.GetStrategyDetails(*p.Strategy)
	if err != nil {
		return nil, FromError(err)
	}
	return &details, nil
}

// --- strategy.select ---

type PromptParams struct {
	Prompt *string `json:"prompt"`
}

func (h *HandlerContext) handleStrategySelect(_ context.Context, params json.RawMessage) (any, *Error) {
	var p PromptParams
	if rpcErr := DecodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := required("prompt", p.Prompt); rpcErr != nil {
		return nil, rpcErr
	}
	res := h.d.AutoSelect(*p.Prompt)
	return &res, nil
}

// --- strategy.compare ---

type StrategyCompareParams struct {
	Prompt     *string  `json:"prompt"`
	Strategies []string `json:"strategies"`
}

func (h *HandlerContext) handleStrategyCompare(_ context.Context, params json.RawMessage) (any, *Error) {
	var p StrategyCompareParams
	if rpcErr := DecodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := required("prompt", p.Prompt); rpcErr != nil {
		return nil, rpcErr
	}
	res := h.d.Compare(*p.Prompt, p.Strategies)
	return &res, nil
}

// --- prompt.refine ---

type PromptRefineParams struct {
	Prompt   *string `json:"prompt"`
	Strategy *string `json:"strategy"`
}

func (h *HandlerContext) handlePromptRefine(_ context.Context, params json.RawMessage) (any, *Error) {
	var p PromptRefineParams
	if rpcErr := DecodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := required("prompt", p.Prompt); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := required("strategy", p.Strategy); rpcErr != nil {
		return nil, rpcErr
	}
	out, err := h.d.Refine(*p.Prompt, *p.Strategy)
	if err != nil {
		return nil, FromError(err)
	}
	return &out, nil
}

// --- prompt.auto ---

type PromptAutoResult struct {
	models.RenderedInstruction
	Selection models.SelectionResult `json:"selection"`
}

func (h *HandlerContext) handlePromptAuto(_ context.Context, params json.RawMessage) (any, *Error) {
	var p PromptParams
	if rpcErr := DecodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := required("prompt", p.Prompt); rpcErr != nil {
		return nil, rpcErr
	}
	out, sel, err := h.d.AutoRefine(*p.Prompt)
	if err != nil {
		return nil, FromError(err)
	}
	return &PromptAutoResult{RenderedInstruction: out, Selection: sel}, nil
}

// --- prompt.router ---

type PromptRouterResult struct {
	Input       string `json:"initial_prompt"`
	Instruction string `json:"instruction"`
}

func (h *HandlerContext) handlePromptRouter(_ context.Context, params json.RawMessage) (any, *Error) {
	var p PromptParams
	if rpcErr := DecodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := required("prompt", p.Prompt); rpcErr != nil {
		return nil, rpcErr
	}
	out, err := h.d.RouterPrompt(*p.Prompt)
	if err != nil {
		return nil, FromError(err)
	}
	return &PromptRouterResult{Input: *p.Prompt, Instruction: out}, nil
}

// --- response.parse ---

// Response kinds accepted by response.parse.
const (
	KindRefinement = "refinement"
	KindRouter     = "router"
)

type ResponseParseParams struct {
	Content *string `json:"content"`
	Kind    string  `json:"kind"`
}

func (h *HandlerContext) handleResponseParse(_ context.Context, params json.RawMessage) (any, *Error) {
	var p ResponseParseParams
	if rpcErr := DecodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := required("content", p.Content); rpcErr != nil {
		return nil, rpcErr
	}
	switch strings.ToLower(p.Kind) {
	case "", KindRefinement:
		return h.d.ParseResponse(*p.Content), nil
	case KindRouter:
		return h.d.ParseRouterResponse(*p.Content), nil
	default:
		return nil, ErrValidationFailed(fmt.Sprintf("unknown kind %q (want %s or %s)", p.Kind, KindRefinement, KindRouter))
	}
}
