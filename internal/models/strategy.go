package models

import (
	"slices"
	"strings"
)

// Placeholder is the marker in a template that receives the user's prompt.
const Placeholder = "[Insert initial prompt here]"

// Tag is a structured capability label attached to a strategy at load time.
type Tag string

const (
	TagCreative      Tag = "creative"
	TagTechnical     Tag = "technical"
	TagMathematical  Tag = "mathematical"
	TagScientific    Tag = "scientific"
	TagComprehensive Tag = "comprehensive"
	TagSimple        Tag = "simple"
)

// AllTags lists every tag in canonical order. Scoring walks tags in this order.
var AllTags = []Tag{
	TagCreative,
	TagTechnical,
	TagMathematical,
	TagScientific,
	TagComprehensive,
	TagSimple,
}

// tagMarkers are the description substrings (lower-case) that imply each tag.
var tagMarkers = map[Tag][]string{
	TagCreative:      {"creative", "story"},
	TagTechnical:     {"technical", "code"},
	TagMathematical:  {"math"},
	TagScientific:    {"scientific"},
	TagComprehensive: {"comprehensive", "multi-stage"},
	TagSimple:        {"simple", "quick"},
}

// ParseTag returns the Tag for s, or false if s is not a known tag.
func ParseTag(s string) (Tag, bool) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(AllTags, t) {
		return t, true
	}
	return "", false
}

// DeriveTags computes the tag set implied by a free-text description,
// unioned with any explicitly declared tags. The result is in canonical order.
func DeriveTags(description string, explicit ...Tag) []Tag {
	lower := strings.ToLower(description)
	var tags []Tag
	for _, tag := range AllTags {
		if slices.Contains(explicit, tag) || ContainsAny(lower, tagMarkers[tag]...) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Strategy is one catalog entry: a named metaprompt template.
type Strategy struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	Template    string   `json:"template"`
	Tags        []Tag    `json:"tags,omitempty"`
}

// HasTag reports whether the strategy carries tag.
func (s *Strategy) HasTag(tag Tag) bool {
	return slices.Contains(s.Tags, tag)
}

// PromptName is the MCP prompt name that applies this strategy.
func (s *Strategy) PromptName() string {
	return "refine_with_" + s.Key
}

// StrategySummary is the list_strategies view of a strategy.
type StrategySummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	PromptName  string   `json:"prompt_name"`
}

// StrategyDetails is the get_strategy_details view of a strategy.
type StrategyDetails struct {
	Key             string   `json:"key"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Examples        []string `json:"examples"`
	Tags            []Tag    `json:"tags"`
	PromptName      string   `json:"prompt_name"`
	TemplatePreview string   `json:"template_preview"`
	Template        string   `json:"template,omitempty"`
}
