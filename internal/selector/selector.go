// Package selector recommends a strategy for free-text input using an
// ordered keyword decision list.
package selector

import (
	"strings"

	"github.com/spboyer/promptplus/internal/models"
)

// Strategy keys the selector can recommend.
const (
	KeyStar      = "star"
	KeyVerse     = "verse"
	KeyMath      = "math"
	KeyPhysics   = "physics"
	KeyBolism    = "bolism"
	KeyMorphosis = "morphosis"
	KeyDone      = "done"
	KeyArpe      = "arpe"
	KeyPhor      = "phor"
	KeyTouille   = "touille"
)

// Word-count thresholds for the length rules.
const (
	ShortPromptWords = 15
	LongPromptWords  = 50
)

// Keyword sets for the decision list.
var (
	CreativeKeywords     = []string{"story", "creative", "narrative", "fiction"}
	TechnicalKeywords    = []string{"code", "programming", "technical", "implement", "function"}
	MathKeywords         = []string{"math", "proof", "equation", "theorem", "formula"}
	AnalyticalKeywords   = []string{"analyze", "compare", "evaluate", "scientific"}
	OptimizationKeywords = []string{"optimize", "improve", "enhance", "refine"}
)

// Input holds the features a rule may inspect.
type Input struct {
	// Lower is the lower-cased input text.
	Lower     string
	WordCount int
}

// Rule is one entry of the decision list.
type Rule struct {
	Match  func(Input) bool
	Key    string
	Reason string
}

func anyKeyword(words []string) func(Input) bool {
	return func(in Input) bool { return models.ContainsAny(in.Lower, words...) }
}

// DefaultRules is evaluated top to bottom; the first match wins. Earlier
// rules dominate later ones when input matches several categories.
var DefaultRules = []Rule{
	{
		Match:  anyKeyword(CreativeKeywords),
		Key:    KeyStar,
		Reason: "Comprehensive approach ideal for creative and narrative tasks",
	},
	{
		Match:  anyKeyword(TechnicalKeywords),
		Key:    KeyVerse,
		Reason: "Structured approach excellent for technical and coding tasks",
	},
	{
		Match:  anyKeyword(MathKeywords),
		Key:    KeyMath,
		Reason: "Specialized approach for mathematical and formal reasoning",
	},
	{
		Match:  anyKeyword(AnalyticalKeywords),
		Key:    KeyPhysics,
		Reason: "Balanced analytical approach for scientific analysis",
	},
	{
		Match:  anyKeyword(OptimizationKeywords),
		Key:    KeyBolism,
		Reason: "Optimization-focused approach for improvement tasks",
	},
	{
		Match:  func(in Input) bool { return in.WordCount < ShortPromptWords },
		Key:    KeyMorphosis,
		Reason: "Simple and efficient approach for short prompts",
	},
	{
		Match:  func(in Input) bool { return in.WordCount > LongPromptWords },
		Key:    KeyStar,
		Reason: "Comprehensive approach for complex, detailed prompts",
	},
}

// DefaultOutcome applies when no rule matches.
var DefaultOutcome = Rule{
	Key:    KeyDone,
	Reason: "Well-rounded approach with role-playing and advanced techniques",
}

// Alternatives maps each recommendation to a contrasting second choice.
var Alternatives = map[string]string{
	KeyStar:      KeyVerse,
	KeyVerse:     KeyPhysics,
	KeyMath:      KeyArpe,
	KeyPhysics:   KeyVerse,
	KeyMorphosis: KeyPhor,
	KeyDone:      KeyStar,
	KeyBolism:    KeyTouille,
	KeyArpe:      KeyMath,
	KeyPhor:      KeyMorphosis,
	KeyTouille:   KeyDone,
}

// Fallback alternatives for keys missing from the table.
const (
	DefaultAlternative  = KeyStar
	FallbackAlternative = KeyVerse
)

// Alternative returns the contrasting key for recommended.
func Alternative(recommended string) string {
	if alt, ok := Alternatives[recommended]; ok {
		return alt
	}
	if recommended == DefaultAlternative {
		return FallbackAlternative
	}
	return DefaultAlternative
}

// DetectType classifies lower-cased text into a coarse prompt type. It uses
// its own keyword sets and may disagree with the decision list.
func DetectType(lower string) models.PromptType {
	switch {
	case models.ContainsAny(lower, "story", "creative", "narrative"):
		return models.PromptTypeCreative
	case models.ContainsAny(lower, "code", "programming", "technical"):
		return models.PromptTypeTechnical
	case models.ContainsAny(lower, "math", "proof", "equation"):
		return models.PromptTypeMathematical
	case models.ContainsAny(lower, "analyze", "scientific", "research"):
		return models.PromptTypeAnalytical
	default:
		return models.PromptTypeGeneral
	}
}

// Lookup resolves strategy keys to records.
type Lookup interface {
	Get(key string) (models.Strategy, bool)
}

// Selector runs the decision list and resolves display names from a catalog.
type Selector struct {
	lookup Lookup
	rules  []Rule
}

// New creates a Selector using DefaultRules.
func New(lookup Lookup) *Selector {
	return &Selector{lookup: lookup, rules: DefaultRules}
}

// Match returns the first rule matching text, or DefaultOutcome.
func (s *Selector) Match(text string) Rule {
	in := Input{Lower: strings.ToLower(text), WordCount: models.WordCount(text)}
	for _, r := range s.rules {
		if r.Match(in) {
			return r
		}
	}
	return DefaultOutcome
}

// AutoSelect recommends a strategy and an alternative for text. It is a
// pure function of text and never fails.
func (s *Selector) AutoSelect(text string) models.SelectionResult {
	rule := s.Match(text)
	alt := Alternative(rule.Key)
	return models.SelectionResult{
		Input:           text,
		Recommended:     rule.Key,
		RecommendedName: s.name(rule.Key),
		Reason:          rule.Reason,
		Alternative:     alt,
		AlternativeName: s.name(alt),
		Features: models.Features{
			WordCount:    models.WordCount(text),
			DetectedType: DetectType(strings.ToLower(text)),
		},
	}
}

func (s *Selector) name(key string) string {
	if s.lookup != nil {
		if st, ok := s.lookup.Get(key); ok {
			return st.Name
		}
	}
	return key
}
