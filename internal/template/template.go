// Package template fills strategy templates and builds the instruction
// texts handed to an external model.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/spboyer/promptplus/internal/models"
)

// UsageHint accompanies every rendered instruction.
const UsageHint = "Send the instruction to a language model and ask it to reply with JSON " +
	"containing the fields in expected_json_format."

// Lookup resolves strategy keys to records.
type Lookup interface {
	Get(key string) (models.Strategy, bool)
}

// Renderer substitutes user prompts into strategy templates.
type Renderer struct {
	lookup Lookup
}

// NewRenderer creates a Renderer over lookup.
func NewRenderer(lookup Lookup) *Renderer {
	return &Renderer{lookup: lookup}
}

// Render fills the template of key with text. An unknown key yields a
// *models.NotFoundError.
func (r *Renderer) Render(text, key string) (models.RenderedInstruction, error) {
	st, ok := r.lookup.Get(key)
	if !ok {
		return models.RenderedInstruction{}, &models.NotFoundError{Key: key}
	}
	return models.RenderedInstruction{
		Input:               text,
		StrategyUsed:        st.Key,
		StrategyName:        st.Name,
		StrategyDescription: st.Description,
		Instruction:         Fill(st.Template, text),
		ExpectedFormat:      models.DefaultExpectedOutput,
		UsageHint:           UsageHint,
	}, nil
}

// Fill replaces every placeholder in tmpl with input, verbatim.
func Fill(tmpl, input string) string {
	return strings.ReplaceAll(tmpl, models.Placeholder, input)
}

// Preview returns the first n runes of s followed by "..." when s is longer.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Execute runs a text/template against data. Missing map keys are errors.
// Text without template delimiters is returned unchanged.
func Execute(name, tmpl string, data any) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("template %s: parse: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template %s: render: %w", name, err)
	}
	return buf.String(), nil
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"samples": func(examples []string, n int) string {
		quoted := make([]string, 0, n)
		for _, ex := range examples[:min(n, len(examples))] {
			quoted = append(quoted, fmt.Sprintf("%q", ex))
		}
		return strings.Join(quoted, ", ")
	},
}
