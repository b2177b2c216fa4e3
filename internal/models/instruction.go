package models

// Field names of the response an external model is asked to produce.
const (
	FieldInitialPromptEvaluation  = "initial_prompt_evaluation"
	FieldRefinedPrompt            = "refined_prompt"
	FieldExplanationOfRefinements = "explanation_of_refinements"
)

// ExpectedOutput describes the three-field JSON shape the downstream model must return.
type ExpectedOutput struct {
	InitialPromptEvaluation  string `json:"initial_prompt_evaluation"`
	RefinedPrompt            string `json:"refined_prompt"`
	ExplanationOfRefinements string `json:"explanation_of_refinements"`
}

// DefaultExpectedOutput is attached to every rendered instruction.
var DefaultExpectedOutput = ExpectedOutput{
	InitialPromptEvaluation:  "Your evaluation of the original prompt's strengths and weaknesses",
	RefinedPrompt:            "The improved version of the prompt",
	ExplanationOfRefinements: "Explanation of the changes made and why they improve the prompt",
}

// RenderedInstruction is a strategy template with the user's prompt substituted in.
type RenderedInstruction struct {
	Input               string         `json:"initial_prompt"`
	StrategyUsed        string         `json:"strategy_used"`
	StrategyName        string         `json:"strategy_name"`
	StrategyDescription string         `json:"strategy_description"`
	Instruction         string         `json:"instruction"`
	ExpectedFormat      ExpectedOutput `json:"expected_json_format"`
	UsageHint           string         `json:"usage_hint"`
}

// RefinementOutput is the parsed response of an external model.
// Raw always holds the unmodified response text.
type RefinementOutput struct {
	InitialPromptEvaluation  string `json:"initial_prompt_evaluation"`
	RefinedPrompt            string `json:"refined_prompt"`
	ExplanationOfRefinements string `json:"explanation_of_refinements"`
	Raw                      string `json:"raw_content"`
	// Source names the extraction step that produced the fields.
	Source   string `json:"source"`
	Degraded bool   `json:"degraded"`
}

// Complete reports whether all three fields were recovered.
func (r *RefinementOutput) Complete() bool {
	return r.InitialPromptEvaluation != "" && r.RefinedPrompt != "" && r.ExplanationOfRefinements != ""
}

// RouterRecommendation is the parsed reply to a router prompt.
type RouterRecommendation struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	Explanation     string `json:"explanation"`
	AlternativeKey  string `json:"alternative_key"`
	AlternativeName string `json:"alternative_name"`
	Raw             string `json:"raw_content"`
	Source          string `json:"source"`
	Degraded        bool   `json:"degraded"`
}
