// Package scoring estimates how well a strategy suits a given input.
package scoring

import (
	"strings"

	"github.com/spboyer/promptplus/internal/models"
)

// Suitability bounds.
const (
	BaseSuitability = 50
	MaxSuitability  = 100
	MinSuitability  = 0
)

// GeneralPurpose is the strength reported when no tag rule fires.
const GeneralPurpose = "general purpose"

// Complexity bands keyed on input word count.
const (
	HighComplexityWords = 50
	LowComplexityWords  = 20

	HighComplexity   = 80
	MediumComplexity = 50
	LowComplexity    = 30
)

// TagRule awards Bonus when a strategy carries Tag and the input triggers it.
type TagRule struct {
	Tag      models.Tag
	Triggers func(lower string, wordCount int) bool
	Bonus    int
	Strength string
}

func keywords(words ...string) func(string, int) bool {
	return func(lower string, _ int) bool { return models.ContainsAny(lower, words...) }
}

// TagRules are applied in order; each contributes at most once.
var TagRules = []TagRule{
	{
		Tag:      models.TagCreative,
		Triggers: keywords("story", "creative", "narrative", "fiction"),
		Bonus:    20,
		Strength: "creative focus",
	},
	{
		Tag:      models.TagTechnical,
		Triggers: keywords("code", "technical", "programming", "algorithm"),
		Bonus:    20,
		Strength: "technical expertise",
	},
	{
		Tag:      models.TagMathematical,
		Triggers: keywords("math", "equation", "proof", "theorem"),
		Bonus:    30,
		Strength: "mathematical reasoning",
	},
	{
		Tag:      models.TagScientific,
		Triggers: keywords("scientific", "research", "hypothesis", "experiment"),
		Bonus:    20,
		Strength: "scientific approach",
	},
	{
		Tag:      models.TagComprehensive,
		Triggers: func(_ string, wc int) bool { return wc > 30 },
		Bonus:    15,
		Strength: "handles complex prompts",
	},
	{
		Tag:      models.TagSimple,
		Triggers: func(_ string, wc int) bool { return wc < 20 },
		Bonus:    15,
		Strength: "efficient for simple tasks",
	},
}

// Scorer computes suitability, complexity and strengths. It holds no state.
type Scorer struct {
	rules []TagRule
}

// New returns a Scorer using TagRules.
func New() *Scorer {
	return &Scorer{rules: TagRules}
}

// Score rates strategy for text. Suitability stays within
// [MinSuitability, MaxSuitability] and Strengths is never empty.
func (s *Scorer) Score(text string, strategy models.Strategy) models.ScoreResult {
	lower := strings.ToLower(text)
	wc := models.WordCount(text)

	suitability := BaseSuitability
	var strengths []string
	for _, r := range s.rules {
		if strategy.HasTag(r.Tag) && r.Triggers(lower, wc) {
			suitability += r.Bonus
			strengths = append(strengths, r.Strength)
		}
	}
	suitability = max(MinSuitability, min(suitability, MaxSuitability))
	if len(strengths) == 0 {
		strengths = []string{GeneralPurpose}
	}

	band, level := Complexity(wc)
	return models.ScoreResult{
		Suitability:     suitability,
		Complexity:      band,
		ComplexityLevel: level,
		Strengths:       strengths,
	}
}

// Complexity bands the input length. It describes the input, not a strategy.
func Complexity(wordCount int) (int, string) {
	switch {
	case wordCount > HighComplexityWords:
		return HighComplexity, models.ComplexityHigh
	case wordCount < LowComplexityWords:
		return LowComplexity, models.ComplexityLow
	default:
		return MediumComplexity, models.ComplexityMedium
	}
}
