// Package refinement extracts structured results from the free-form text
// an external model returns for a rendered instruction.
package refinement

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spboyer/promptplus/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Extraction sources, in the order they are tried.
const (
	SourceJSONTag    = "json_tag"
	SourceCodeBlock  = "code_block"
	SourceJSONObject = "json_object"
	SourceSections   = "sections"
	SourceRegex      = "regex"
	SourceRaw        = "raw"
	SourceNone       = "none"
)

var (
	jsonTagPattern   = regexp.MustCompile(`(?s)<json>\s*(.*?)\s*</json>`)
	refinedSection   = regexp.MustCompile(`(?s)REFINED PROMPT:\s*(.*?)\s*(?:IMPROVEMENTS SUMMARY:|$)`)
	summarySection   = regexp.MustCompile(`(?s)IMPROVEMENTS SUMMARY:\s*(.*?)\s*$`)
	fieldPatterns    = map[string]*regexp.Regexp{}
	refinementFields = []string{
		models.FieldInitialPromptEvaluation,
		models.FieldRefinedPrompt,
		models.FieldExplanationOfRefinements,
	}
)

func init() {
	for _, f := range append(refinementFields, "key", "name", "explanation") {
		// The value group skips escaped quotes so `\"` never ends a match.
		fieldPatterns[f] = regexp.MustCompile(`"` + f + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	}
}

// Parse extracts the three refinement fields from raw. It never fails: when
// no structure is found the trimmed text becomes the refined prompt and the
// result is marked degraded. Raw is always preserved.
func Parse(raw string) *models.RefinementOutput {
	out := &models.RefinementOutput{Raw: raw, Source: SourceNone}

	for _, cand := range jsonCandidates(raw) {
		obj, ok := decodeObject(cand.text)
		if !ok || !hasAny(obj, refinementFields...) {
			continue
		}
		out.InitialPromptEvaluation = stringify(obj[models.FieldInitialPromptEvaluation])
		out.RefinedPrompt = stringify(obj[models.FieldRefinedPrompt])
		out.ExplanationOfRefinements = stringify(obj[models.FieldExplanationOfRefinements])
		out.Source = cand.source
		out.Degraded = !out.Complete()
		return out
	}

	if m := refinedSection.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
		out.RefinedPrompt = trimFence(m[1])
		if s := summarySection.FindStringSubmatch(raw); s != nil {
			out.ExplanationOfRefinements = trimFence(s[1])
		}
		out.Source = SourceSections
		out.Degraded = !out.Complete()
		return out
	}

	out.Degraded = true
	found := false
	for _, f := range refinementFields {
		v, ok := regexField(raw, f)
		if !ok {
			continue
		}
		found = true
		switch f {
		case models.FieldInitialPromptEvaluation:
			out.InitialPromptEvaluation = v
		case models.FieldRefinedPrompt:
			out.RefinedPrompt = v
		case models.FieldExplanationOfRefinements:
			out.ExplanationOfRefinements = v
		}
	}
	if found {
		out.Source = SourceRegex
		return out
	}

	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		out.RefinedPrompt = trimmed
		out.Source = SourceRaw
	}
	return out
}

// ParseRouter extracts the recommendation from a reply to a router prompt.
func ParseRouter(raw string) *models.RouterRecommendation {
	out := &models.RouterRecommendation{Raw: raw, Source: SourceNone, Degraded: true}

	for _, cand := range jsonCandidates(raw) {
		obj, ok := decodeObject(cand.text)
		if !ok || !hasAny(obj, "recommended_metaprompt") {
			continue
		}
		rec, _ := obj["recommended_metaprompt"].(map[string]any)
		alt, _ := obj["alternative_recommendation"].(map[string]any)
		out.Key = stringify(rec["key"])
		out.Name = stringify(rec["name"])
		out.Explanation = stringify(rec["explanation"])
		out.AlternativeKey = stringify(alt["key"])
		out.AlternativeName = stringify(alt["name"])
		out.Source = cand.source
		out.Degraded = out.Key == ""
		return out
	}

	keys := fieldPatterns["key"].FindAllStringSubmatch(raw, 2)
	if len(keys) > 0 {
		out.Key = unescape(keys[0][1])
		if len(keys) > 1 {
			out.AlternativeKey = unescape(keys[1][1])
		}
		out.Name, _ = regexField(raw, "name")
		out.Explanation, _ = regexField(raw, "explanation")
		out.Source = SourceRegex
	}
	return out
}

type candidate struct {
	source string
	text   string
}

// jsonCandidates lists the text spans that may hold a JSON object, most
// explicit first.
func jsonCandidates(raw string) []candidate {
	var out []candidate
	if m := jsonTagPattern.FindStringSubmatch(raw); m != nil {
		out = append(out, candidate{SourceJSONTag, m[1]})
	}
	for _, block := range fencedBlocks(raw) {
		out = append(out, candidate{SourceCodeBlock, block})
	}
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		out = append(out, candidate{SourceJSONObject, raw[start : end+1]})
	}
	return out
}

// fencedBlocks returns the contents of fenced code blocks in raw, json
// blocks first.
func fencedBlocks(raw string) []string {
	src := []byte(raw)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var tagged, other []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		if strings.EqualFold(string(fcb.Language(src)), "json") {
			tagged = append(tagged, b.String())
		} else {
			other = append(other, b.String())
		}
		return ast.WalkSkipChildren, nil
	})
	return append(tagged, other...)
}

// decodeObject parses s as a JSON object. A JSON string holding an object
// is decoded once more.
func decodeObject(s string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err != nil {
		return nil, false
	}
	if str, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			return nil, false
		}
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

func hasAny(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

// stringify renders a decoded JSON value as text. Lists become one item
// per line.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	case map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

func regexField(raw, field string) (string, bool) {
	m := fieldPatterns[field].FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return unescape(m[1]), true
}

func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return strings.TrimSpace(u)
	}
	r := strings.NewReplacer(`\n`, "\n", `\"`, `"`, `\t`, "\t", `\\`, `\`)
	return strings.TrimSpace(r.Replace(s))
}

func trimFence(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "`"))
}
