package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spboyer/promptplus/internal/dispatch"
	"github.com/spboyer/promptplus/internal/jsonrpc"
	"github.com/spboyer/promptplus/internal/models"
	"github.com/spboyer/promptplus/internal/template"
)

// Names of the prompts that are not tied to one strategy.
const (
	PromptAutoRefine         = "auto_refine"
	PromptCompareRefinements = "compare_refinements"
	PromptPrepareRefinement  = "prepare_refinement"
	PromptExecuteRefinement  = "execute_refinement"

	refineWithPrefix = "refine_with_"

	// defaultUserPrompt stands in when a client omits user_prompt.
	defaultUserPrompt = "[User prompt will be inserted here]"

	// maxComparedStrategies caps the strategies listed in a comparison prompt.
	maxComparedStrategies = 3
)

// Prompt describes an MCP prompt template.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
}

// PromptArgument is one named argument of a Prompt.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

var userPromptArg = PromptArgument{Name: "user_prompt", Description: "The prompt to refine", Required: true}

// PromptsDef returns a refine_with_<key> prompt per strategy followed by
// the workflow prompts.
func PromptsDef(strategies []models.Strategy) []Prompt {
	prompts := make([]Prompt, 0, len(strategies)+4)
	for _, st := range strategies {
		prompts = append(prompts, Prompt{
			Name:        st.PromptName(),
			Description: fmt.Sprintf("Refine a prompt using %s: %s", st.Name, st.Description),
			Arguments:   []PromptArgument{userPromptArg},
		})
	}
	return append(prompts,
		Prompt{
			Name:        PromptAutoRefine,
			Description: "Automatically select the best strategy and refine the prompt",
			Arguments:   []PromptArgument{userPromptArg},
		},
		Prompt{
			Name:        PromptCompareRefinements,
			Description: "Compare multiple refinement strategies for a prompt",
			Arguments: []PromptArgument{
				userPromptArg,
				{Name: "strategies", Description: "Comma-separated list of strategies to compare (optional)"},
			},
		},
		Prompt{
			Name:        PromptPrepareRefinement,
			Description: "Step 1: Analyze user prompt and return metaprompt execution instructions",
			Arguments: []PromptArgument{
				{Name: "user_prompt", Description: "The prompt to prepare for refinement", Required: true},
			},
		},
		Prompt{
			Name:        PromptExecuteRefinement,
			Description: "Step 2: Process metaprompt results and return final refined prompt",
			Arguments: []PromptArgument{
				{Name: "metaprompt_results", Description: "The results from executing the metaprompt", Required: true},
				{Name: "original_prompt", Description: "The original user prompt (for context)", Required: true},
			},
		},
	)
}

type promptsListResult struct {
	Prompts []Prompt `json:"prompts"`
}

func (s *Server) handlePromptsList(req *jsonrpc.Request) *jsonrpc.Response {
	return result(req, promptsListResult{Prompts: PromptsDef(s.d.Strategies())})
}

type promptsGetParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type promptArgs struct {
	UserPrompt        string   `json:"user_prompt"`
	Strategies        []string `json:"strategies"`
	MetapromptResults string   `json:"metaprompt_results"`
	OriginalPrompt    string   `json:"original_prompt"`
}

type promptMessage struct {
	Role    string       `json:"role"`
	Content contentBlock `json:"content"`
}

type promptsGetResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []promptMessage `json:"messages"`
}

func (s *Server) handlePromptsGet(req *jsonrpc.Request) *jsonrpc.Response {
	var p promptsGetParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return failure(req, jsonrpc.ErrInvalidParams(err.Error()))
	}
	rawArgs, err := json.Marshal(p.Arguments)
	if err != nil {
		return failure(req, jsonrpc.ErrInvalidParams(err.Error()))
	}
	var args promptArgs
	if rpcErr := jsonrpc.DecodeParams(rawArgs, &args); rpcErr != nil {
		return failure(req, rpcErr)
	}
	text, err := renderPrompt(s.d, p.Name, args)
	if err != nil {
		s.logger.Debug("prompt render failed", "prompt", p.Name, "error", err)
		var rpcErr *jsonrpc.Error
		if errors.As(err, &rpcErr) {
			return failure(req, rpcErr)
		}
		return failure(req, jsonrpc.FromError(err))
	}
	return result(req, promptsGetResult{
		Description: p.Name,
		Messages: []promptMessage{{
			Role:    "user",
			Content: contentBlock{Type: "text", Text: text},
		}},
	})
}

// renderPrompt builds the user message text of the named prompt.
func renderPrompt(d *dispatch.Dispatcher, name string, args promptArgs) (string, error) {
	if name == PromptExecuteRefinement {
		original := args.OriginalPrompt
		if original == "" {
			original = args.UserPrompt
		}
		return template.ExecutePrompt(args.MetapromptResults, original)
	}

	if args.UserPrompt == "" {
		args.UserPrompt = defaultUserPrompt
	}
	switch {
	case name == PromptAutoRefine:
		sel := d.AutoSelect(args.UserPrompt)
		st, err := d.Strategy(sel.Recommended)
		if err != nil {
			return "", err
		}
		return template.AutoRefinePrompt(st, sel)

	case name == PromptPrepareRefinement:
		sel := d.AutoSelect(args.UserPrompt)
		st, err := d.Strategy(sel.Recommended)
		if err != nil {
			return "", err
		}
		return template.PreparePrompt(st, sel)

	case name == PromptCompareRefinements:
		cmp := d.Compare(args.UserPrompt, args.Strategies)
		var strategies []models.Strategy
		for _, c := range cmp.Candidates[:min(len(cmp.Candidates), maxComparedStrategies)] {
			if st, err := d.Strategy(c.Key); err == nil {
				strategies = append(strategies, st)
			}
		}
		return template.ComparePrompt(args.UserPrompt, strategies)

	case strings.HasPrefix(name, refineWithPrefix):
		st, err := d.Strategy(strings.TrimPrefix(name, refineWithPrefix))
		if err != nil {
			return "", err
		}
		return template.RefineWithPrompt(st, args.UserPrompt)

	default:
		return "", jsonrpc.ErrInvalidParams(fmt.Sprintf("unknown prompt: %s", name))
	}
}
