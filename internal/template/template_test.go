package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/spboyer/promptplus/internal/catalog"
	"github.com/spboyer/promptplus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_AllBuiltinStrategies(t *testing.T) {
	cat, err := catalog.LoadBuiltin(t.Context(), catalog.Options{})
	require.NoError(t, err)
	r := NewRenderer(cat)

	inputs := []string{
		"Improve this prompt",
		"",
		"Markup {{.Injected}} <b>stays</b> & [brackets]",
	}
	for _, key := range cat.Keys() {
		st, _ := cat.Get(key)
		for _, in := range inputs {
			got, err := r.Render(in, key)
			require.NoError(t, err, key)
			assert.Contains(t, got.Instruction, in, key)
			assert.NotContains(t, got.Instruction, models.Placeholder, key)
			assert.Equal(t, len(st.Template)-len(models.Placeholder)+len(in), len(got.Instruction), key)
			assert.Equal(t, key, got.StrategyUsed)
			assert.Equal(t, st.Name, got.StrategyName)
			assert.Equal(t, st.Description, got.StrategyDescription)
			assert.Equal(t, models.DefaultExpectedOutput, got.ExpectedFormat)
			assert.NotEmpty(t, got.UsageHint)
		}
	}
}

func TestRender_NotFound(t *testing.T) {
	r := NewRenderer(catalog.New())
	got, err := r.Render("text", "nonexistent-key")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrStrategyNotFound))

	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nonexistent-key", nf.Key)
	assert.Empty(t, got.Instruction)
}

func TestFill_ReplacesEveryOccurrence(t *testing.T) {
	tmpl := "A " + models.Placeholder + " B " + models.Placeholder
	assert.Equal(t, "A x B x", Fill(tmpl, "x"))
	assert.Equal(t, "no marker", Fill("no marker", "x"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 10))
	assert.Equal(t, "abc...", Preview("abcdef", 3))
	assert.Equal(t, "héé...", Preview("hééllo", 3), "counts runes, not bytes")
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{name: "passthrough", tmpl: "plain text", want: "plain text"},
		{name: "map data", tmpl: "Hi {{.Name}}", data: map[string]any{"Name": "Ada"}, want: "Hi Ada"},
		{name: "inc", tmpl: "{{inc 1}}", want: "2"},
		{name: "samples", tmpl: `{{samples .Ex 2}}`, data: map[string]any{"Ex": []string{"a", "b", "c"}}, want: `"a", "b"`},
		{name: "samples short", tmpl: `{{samples .Ex 2}}`, data: map[string]any{"Ex": []string{}}, want: ``},
		{name: "missing key", tmpl: "{{.Nope}}", data: map[string]any{}, wantErr: true},
		{name: "parse error", tmpl: "{{.Unclosed", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Execute(tt.name, tt.tmpl, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func testStrategy() models.Strategy {
	return models.Strategy{
		Key:         "star",
		Name:        "ECHO Prompt",
		Description: "A comprehensive approach",
		Examples:    []string{"first", "second", "third"},
		Template:    "Refine: " + models.Placeholder,
	}
}

func TestMessagePrompts(t *testing.T) {
	st := testStrategy()
	sel := models.SelectionResult{
		Input:           "Write a {{story}}",
		Recommended:     "star",
		Reason:          "Because reasons",
		AlternativeName: "Verse Prompt",
	}

	refine, err := RefineWithPrompt(st, "Write a {{story}}")
	require.NoError(t, err)
	assert.Contains(t, refine, "'ECHO Prompt' meta-prompt template")
	assert.Contains(t, refine, "Refine: Write a {{story}}")
	assert.Contains(t, refine, "A comprehensive approach")

	auto, err := AutoRefinePrompt(st, sel)
	require.NoError(t, err)
	assert.Contains(t, auto, "most suitable for this prompt because: Because reasons.")
	assert.Contains(t, auto, "Refine: Write a {{story}}")

	prep, err := PreparePrompt(st, sel)
	require.NoError(t, err)
	assert.Contains(t, prep, "- Selected Strategy: ECHO Prompt")
	assert.Contains(t, prep, "- Alternative: Verse Prompt")
	assert.Contains(t, prep, "`execute_refinement`")
	assert.Contains(t, prep, "**Original Prompt (for reference):** Write a {{story}}")

	exec, err := ExecutePrompt("model output here", "orig")
	require.NoError(t, err)
	assert.Contains(t, exec, "model output here")
	assert.Contains(t, exec, "**Original Prompt:** orig")
	assert.Contains(t, exec, "REFINED PROMPT:")
}

func TestComparePrompt(t *testing.T) {
	other := testStrategy()
	other.Name = "Verse Prompt"
	other.Description = "Structured"

	got, err := ComparePrompt("my prompt", []models.Strategy{testStrategy(), other})
	require.NoError(t, err)
	assert.Contains(t, got, "Original prompt: my prompt")
	assert.Contains(t, got, "**Strategy: ECHO Prompt**")
	assert.Contains(t, got, "**Strategy: Verse Prompt**")
	assert.Contains(t, got, "Description: Structured")
	assert.Less(t, strings.Index(got, "ECHO Prompt"), strings.Index(got, "Verse Prompt"))
}

func TestRouterPrompt(t *testing.T) {
	cat, err := catalog.LoadBuiltin(t.Context(), catalog.Options{})
	require.NoError(t, err)

	got, err := RouterPrompt("Summarize a paper", cat.All())
	require.NoError(t, err)
	assert.Contains(t, got, "1. **arpe**")
	assert.Contains(t, got, "10. **verse**")
	assert.Contains(t, got, "For this given user query:\nSummarize a paper\n")
	assert.Contains(t, got, "<json>")
	assert.NotContains(t, got, models.Placeholder)

	star, _ := cat.Get("star")
	assert.Contains(t, got, "- **Sample**: "+`"`+star.Examples[0]+`"`)
}
