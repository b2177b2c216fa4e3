package refinement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_JSONTag(t *testing.T) {
	raw := `Here you go.
<json>
{"initial_prompt_evaluation": "vague", "refined_prompt": "Write a haiku about rain.", "explanation_of_refinements": "added form"}
</json>
Thanks!`
	out := Parse(raw)
	require.NotNil(t, out)
	assert.Equal(t, SourceJSONTag, out.Source)
	assert.Equal(t, "vague", out.InitialPromptEvaluation)
	assert.Equal(t, "Write a haiku about rain.", out.RefinedPrompt)
	assert.Equal(t, "added form", out.ExplanationOfRefinements)
	assert.False(t, out.Degraded)
	assert.Equal(t, raw, out.Raw)
}

func TestParse_FencedBlockPrefersJSON(t *testing.T) {
	raw := "Notes:\n\n```text\nnot json\n```\n\n```json\n{\"initial_prompt_evaluation\": \"a\", \"refined_prompt\": \"b\", \"explanation_of_refinements\": [\"c\", \"d\"]}\n```\n"
	out := Parse(raw)
	assert.Equal(t, SourceCodeBlock, out.Source)
	assert.Equal(t, "b", out.RefinedPrompt)
	assert.Equal(t, "c\nd", out.ExplanationOfRefinements)
	assert.False(t, out.Degraded)
}

func TestParse_BareObject(t *testing.T) {
	raw := `Sure: {"refined_prompt": "Explain TCP handshakes step by step."} hope it helps`
	out := Parse(raw)
	assert.Equal(t, SourceJSONObject, out.Source)
	assert.Equal(t, "Explain TCP handshakes step by step.", out.RefinedPrompt)
	assert.True(t, out.Degraded, "missing fields mark the result degraded")
}

func TestParse_DoubleEncoded(t *testing.T) {
	raw := `<json>"{\"initial_prompt_evaluation\":\"x\",\"refined_prompt\":\"y\",\"explanation_of_refinements\":\"z\"}"</json>`
	out := Parse(raw)
	assert.Equal(t, SourceJSONTag, out.Source)
	assert.Equal(t, "y", out.RefinedPrompt)
	assert.False(t, out.Degraded)
}

func TestParse_Sections(t *testing.T) {
	raw := "REFINED PROMPT:\nList three uses of graphene.\n\nIMPROVEMENTS SUMMARY:\nMade it specific."
	out := Parse(raw)
	assert.Equal(t, SourceSections, out.Source)
	assert.Equal(t, "List three uses of graphene.", out.RefinedPrompt)
	assert.Equal(t, "Made it specific.", out.ExplanationOfRefinements)
	assert.True(t, out.Degraded)
}

func TestParse_RegexFallback(t *testing.T) {
	// Trailing comma makes the object invalid JSON.
	raw := `{"initial_prompt_evaluation": "too short", "refined_prompt": "Line one\nLine two", "explanation_of_refinements": "more detail",}`
	out := Parse(raw)
	assert.Equal(t, SourceRegex, out.Source)
	assert.Equal(t, "too short", out.InitialPromptEvaluation)
	assert.Equal(t, "Line one\nLine two", out.RefinedPrompt)
	assert.Equal(t, "more detail", out.ExplanationOfRefinements)
	assert.True(t, out.Degraded)
}

func TestParse_RegexFallbackEscapedQuotes(t *testing.T) {
	// Reply cut off before the object closes.
	raw := `{"initial_prompt_evaluation": "ok", "refined_prompt": "Say \"hi\", then go", "explanation_of_refinements": "quoted \"x\"`
	out := Parse(raw)
	assert.Equal(t, SourceRegex, out.Source)
	assert.Equal(t, "ok", out.InitialPromptEvaluation)
	assert.Equal(t, `Say "hi", then go`, out.RefinedPrompt)
	assert.Empty(t, out.ExplanationOfRefinements)
	assert.True(t, out.Degraded)
}

func TestParse_PlainText(t *testing.T) {
	out := Parse("  Just write a better prompt.  ")
	assert.Equal(t, SourceRaw, out.Source)
	assert.Equal(t, "Just write a better prompt.", out.RefinedPrompt)
	assert.True(t, out.Degraded)
}

func TestParse_Empty(t *testing.T) {
	out := Parse("")
	require.NotNil(t, out)
	assert.Equal(t, SourceNone, out.Source)
	assert.Empty(t, out.RefinedPrompt)
	assert.True(t, out.Degraded)
}

func TestParseRouter(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		key     string
		alt     string
		source  string
		degrade bool
	}{
		{
			name:   "json object",
			raw:    `{"recommended_metaprompt": {"key": "math", "name": "Math", "explanation": "proof"}, "alternative_recommendation": {"key": "arpe", "name": "ARPE"}}`,
			key:    "math",
			alt:    "arpe",
			source: SourceJSONObject,
		},
		{
			name:    "regex",
			raw:     `recommended: "key": "star", then alternative "key": "verse",`,
			key:     "star",
			alt:     "verse",
			source:  SourceRegex,
			degrade: true,
		},
		{
			name:    "nothing",
			raw:     "no idea",
			source:  SourceNone,
			degrade: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ParseRouter(tt.raw)
			assert.Equal(t, tt.key, out.Key)
			assert.Equal(t, tt.alt, out.AlternativeKey)
			assert.Equal(t, tt.source, out.Source)
			assert.Equal(t, tt.degrade, out.Degraded)
			assert.Equal(t, tt.raw, out.Raw)
		})
	}
}
