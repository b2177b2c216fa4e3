package models

// PromptType is the coarse category detected from input text.
type PromptType string

const (
	PromptTypeCreative     PromptType = "creative"
	PromptTypeTechnical    PromptType = "technical"
	PromptTypeMathematical PromptType = "mathematical"
	PromptTypeAnalytical   PromptType = "analytical"
	PromptTypeGeneral      PromptType = "general"
)

// Features are the simple input measurements used by auto-selection.
type Features struct {
	WordCount    int        `json:"word_count"`
	DetectedType PromptType `json:"detected_type"`
}

// SelectionResult is the outcome of auto-selecting a strategy for an input.
type SelectionResult struct {
	Input           string   `json:"input_prompt"`
	Recommended     string   `json:"recommended_strategy"`
	RecommendedName string   `json:"strategy_name"`
	Reason          string   `json:"reason"`
	Alternative     string   `json:"alternative"`
	AlternativeName string   `json:"alternative_name"`
	Features        Features `json:"features"`
}
