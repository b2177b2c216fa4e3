package webapi

import "github.com/spboyer/promptplus/internal/models"

// HealthResponse is the health check response.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Strategies int    `json:"strategies"`
}

// StrategyListResponse is returned by GET /api/strategies.
type StrategyListResponse struct {
	Strategies map[string]models.StrategySummary `json:"strategies"`
	Count      int                               `json:"count"`
}

// PromptRequest is the body of the endpoints that take only a prompt.
type PromptRequest struct {
	Prompt *string `json:"prompt"`
}

// RefineRequest is the body of POST /api/refine. An empty strategy selects
// one automatically.
type RefineRequest struct {
	Prompt   *string `json:"prompt"`
	Strategy string  `json:"strategy"`
}

// RefineResponse is a rendered instruction plus the selection that chose
// it, when the strategy was picked automatically.
type RefineResponse struct {
	models.RenderedInstruction
	Selection *models.SelectionResult `json:"selection,omitempty"`
}

// CompareRequest is the body of POST /api/compare. Omitted strategies
// compare the auto-selected trio.
type CompareRequest struct {
	Prompt     *string  `json:"prompt"`
	Strategies []string `json:"strategies"`
}

// RouterResponse carries a router instruction.
type RouterResponse struct {
	Input       string `json:"initial_prompt"`
	Instruction string `json:"instruction"`
}

// ParseRequest is the body of POST /api/parse.
type ParseRequest struct {
	Content *string `json:"content"`
	Kind    string  `json:"kind"`
}
