package mcp

import (
	"encoding/json"
	"fmt"
)

// Tool describes an MCP tool with its input schema.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

const promptProperty = `"prompt": {"type": "string", "description": "The prompt to analyze or refine"}`

// ToolsDef returns the tools exposed by the server. keys populates the
// enum of strategy arguments.
func ToolsDef(keys []string) []Tool {
	strategyProperty := `"strategy": {"type": "string", "description": "Strategy key"}`
	if len(keys) > 0 {
		if enum, err := json.Marshal(keys); err == nil {
			strategyProperty = fmt.Sprintf(`"strategy": {"type": "string", "enum": %s, "description": "Strategy key"}`, enum)
		}
	}

	return []Tool{
		{
			Name:        "list_strategies",
			Description: "List all available metaprompt strategies with descriptions",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name:        "get_strategy_details",
			Description: "Get detailed information about a specific strategy",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {` + strategyProperty + `},
				"required": ["strategy"]
			}`),
		},
		{
			Name:        "auto_select_strategy",
			Description: "Recommend the best strategy for a prompt using keyword and length heuristics",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {` + promptProperty + `},
				"required": ["prompt"]
			}`),
		},
		{
			Name:        "refine_prompt",
			Description: "Fill a strategy's metaprompt template with a prompt and return the instruction to execute",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					` + promptProperty + `,
					` + strategyProperty + `
				},
				"required": ["prompt", "strategy"]
			}`),
		},
		{
			Name:        "compare_strategies",
			Description: "Score several strategies for a prompt and recommend the most suitable",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					` + promptProperty + `,
					"strategies": {
						"description": "Strategy keys to compare, as an array or comma-separated string. Omit for the auto-selected trio.",
						"anyOf": [{"type": "array", "items": {"type": "string"}}, {"type": "string"}]
					}
				},
				"required": ["prompt"]
			}`),
		},
		{
			Name:        "auto_refine",
			Description: "Select a strategy automatically and return its filled instruction",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {` + promptProperty + `},
				"required": ["prompt"]
			}`),
		},
		{
			Name:        "generate_router_prompt",
			Description: "Build an instruction asking a model to pick the best strategy from the catalog",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {` + promptProperty + `},
				"required": ["prompt"]
			}`),
		},
		{
			Name:        "parse_refinement",
			Description: "Extract the structured fields from a model's reply to a refinement or router instruction",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"content": {"type": "string", "description": "The model's raw reply"},
					"kind": {"type": "string", "enum": ["refinement", "router"], "description": "Reply kind (default refinement)"}
				},
				"required": ["content"]
			}`),
		},
	}
}
