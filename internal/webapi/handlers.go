package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spboyer/promptplus/internal/models"
)

// Version is set at build time or defaults to dev.
var Version = "0.0.0-dev"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Service is the set of operations the API exposes. *dispatch.Dispatcher
// satisfies it.
type Service interface {
	ListStrategies() map[string]models.StrategySummary
	GetStrategyDetails(key string) (models.StrategyDetails, error)
	AutoSelect(text string) models.SelectionResult
	Refine(text, key string) (models.RenderedInstruction, error)
	AutoRefine(text string) (models.RenderedInstruction, models.SelectionResult, error)
	Compare(text string, keys []string) models.ComparisonResult
	RouterPrompt(text string) (string, error)
	ParseResponse(raw string) *models.RefinementOutput
	ParseRouterResponse(raw string) *models.RouterRecommendation
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	svc Service
}

// NewHandlers creates a new Handlers over svc.
func NewHandlers(svc Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Version:    Version,
		Strategies: len(h.svc.ListStrategies()),
	})
}

// HandleStrategies lists every strategy.
func (h *Handlers) HandleStrategies(w http.ResponseWriter, _ *http.Request) {
	list := h.svc.ListStrategies()
	writeJSON(w, http.StatusOK, StrategyListResponse{Strategies: list, Count: len(list)})
}

// HandleStrategyDetail returns one strategy with its template.
func (h *Handlers) HandleStrategyDetail(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, invalid("strategy key is required"))
		return
	}
	details, err := h.svc.GetStrategyDetails(key)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// HandleSelect recommends a strategy for the prompt.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if !decodeBody(w, r, &req) || !requireField(w, "prompt", req.Prompt) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.AutoSelect(*req.Prompt))
}

// HandleRefine renders a strategy's template with the prompt.
func (h *Handlers) HandleRefine(w http.ResponseWriter, r *http.Request) {
	var req RefineRequest
	if !decodeBody(w, r, &req) || !requireField(w, "prompt", req.Prompt) {
		return
	}

	if strings.TrimSpace(req.Strategy) == "" {
		out, sel, err := h.svc.AutoRefine(*req.Prompt)
		if err != nil {
			writeOpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, RefineResponse{RenderedInstruction: out, Selection: &sel})
		return
	}

	out, err := h.svc.Refine(*req.Prompt, req.Strategy)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RefineResponse{RenderedInstruction: out})
}

// HandleCompare scores strategies for the prompt.
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decodeBody(w, r, &req) || !requireField(w, "prompt", req.Prompt) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Compare(*req.Prompt, req.Strategies))
}

// HandleRouter builds the router instruction for the prompt.
func (h *Handlers) HandleRouter(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if !decodeBody(w, r, &req) || !requireField(w, "prompt", req.Prompt) {
		return
	}
	out, err := h.svc.RouterPrompt(*req.Prompt)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RouterResponse{Input: *req.Prompt, Instruction: out})
}

// HandleParse extracts structured fields from a model reply.
func (h *Handlers) HandleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeBody(w, r, &req) || !requireField(w, "content", req.Content) {
		return
	}
	switch strings.ToLower(req.Kind) {
	case "", "refinement":
		writeJSON(w, http.StatusOK, h.svc.ParseResponse(*req.Content))
	case "router":
		writeJSON(w, http.StatusOK, h.svc.ParseRouterResponse(*req.Content))
	default:
		writeError(w, http.StatusBadRequest, invalid(fmt.Sprintf("unknown kind %q", req.Kind)))
	}
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Service) {
	h := NewHandlers(svc)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/strategies", h.HandleStrategies)
	mux.HandleFunc("GET /api/strategies/{key}", h.HandleStrategyDetail)
	mux.HandleFunc("POST /api/select", h.HandleSelect)
	mux.HandleFunc("POST /api/refine", h.HandleRefine)
	mux.HandleFunc("POST /api/compare", h.HandleCompare)
	mux.HandleFunc("POST /api/router", h.HandleRouter)
	mux.HandleFunc("POST /api/parse", h.HandleParse)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
// A "*" entry allows any origin.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed[origin] || allowed["*"]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, invalid(fmt.Sprintf("invalid request body: %v", err)))
		return false
	}
	return true
}

func requireField(w http.ResponseWriter, name string, v *string) bool {
	if v == nil {
		writeError(w, http.StatusBadRequest, invalid(name+" is required"))
		return false
	}
	return true
}

func invalid(msg string) models.ErrorRecord {
	return models.ErrorRecord{Error: msg, Code: models.CodeInvalidArguments}
}

// writeOpError maps an operation error to a status code.
func writeOpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, models.ErrStrategyNotFound) {
		status = http.StatusNotFound
	}
	writeError(w, status, models.NewErrorRecord(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, rec models.ErrorRecord) {
	writeJSON(w, status, rec)
}
