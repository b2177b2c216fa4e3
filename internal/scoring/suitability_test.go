package scoring

import (
	"strings"
	"testing"

	"github.com/spboyer/promptplus/internal/catalog"
	"github.com/spboyer/promptplus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strategy(tags ...models.Tag) models.Strategy {
	return models.Strategy{Key: "s", Name: "S", Tags: tags}
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestScore_Bonuses(t *testing.T) {
	s := New()

	tests := []struct {
		name      string
		input     string
		strategy  models.Strategy
		want      int
		strengths []string
	}{
		{
			name:      "no tags",
			input:     "write a story",
			strategy:  strategy(),
			want:      50,
			strengths: []string{GeneralPurpose},
		},
		{
			name:      "creative tag without trigger",
			input:     words(25),
			strategy:  strategy(models.TagCreative),
			want:      50,
			strengths: []string{GeneralPurpose},
		},
		{
			name:      "creative",
			input:     words(25) + " story",
			strategy:  strategy(models.TagCreative),
			want:      70,
			strengths: []string{"creative focus"},
		},
		{
			name:      "technical via algorithm",
			input:     words(25) + " algorithm",
			strategy:  strategy(models.TagTechnical),
			want:      70,
			strengths: []string{"technical expertise"},
		},
		{
			name:      "mathematical",
			input:     words(25) + " theorem",
			strategy:  strategy(models.TagMathematical),
			want:      80,
			strengths: []string{"mathematical reasoning"},
		},
		{
			name:      "scientific",
			input:     words(25) + " hypothesis",
			strategy:  strategy(models.TagScientific),
			want:      70,
			strengths: []string{"scientific approach"},
		},
		{
			name:      "comprehensive over 30 words",
			input:     words(31),
			strategy:  strategy(models.TagComprehensive),
			want:      65,
			strengths: []string{"handles complex prompts"},
		},
		{
			name:      "comprehensive at 30 words",
			input:     words(30),
			strategy:  strategy(models.TagComprehensive),
			want:      50,
			strengths: []string{GeneralPurpose},
		},
		{
			name:      "simple under 20 words",
			input:     words(19),
			strategy:  strategy(models.TagSimple),
			want:      65,
			strengths: []string{"efficient for simple tasks"},
		},
		{
			name:      "simple at 20 words",
			input:     words(20),
			strategy:  strategy(models.TagSimple),
			want:      50,
			strengths: []string{GeneralPurpose},
		},
		{
			name:      "stacked bonuses in rule order",
			input:     "a creative story with code",
			strategy:  strategy(models.TagSimple, models.TagTechnical, models.TagCreative),
			want:      100,
			strengths: []string{"creative focus", "technical expertise", "efficient for simple tasks"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.input, tt.strategy)
			assert.Equal(t, tt.want, got.Suitability)
			assert.Equal(t, tt.strengths, got.Strengths)
		})
	}
}

func TestScore_Clamped(t *testing.T) {
	s := New()
	all := strategy(models.AllTags...)
	// creative + technical + math + scientific + simple = 50+20+20+30+20+15
	got := s.Score("story code math research", all)
	assert.Equal(t, MaxSuitability, got.Suitability)
	assert.Len(t, got.Strengths, 5)
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		words int
		band  int
		level string
	}{
		{0, 30, models.ComplexityLow},
		{19, 30, models.ComplexityLow},
		{20, 50, models.ComplexityMedium},
		{50, 50, models.ComplexityMedium},
		{51, 80, models.ComplexityHigh},
	}
	for _, tt := range tests {
		band, level := Complexity(tt.words)
		assert.Equal(t, tt.band, band, "words=%d", tt.words)
		assert.Equal(t, tt.level, level, "words=%d", tt.words)
	}

	got := New().Score(words(60), strategy())
	assert.Equal(t, HighComplexity, got.Complexity)
	assert.Equal(t, models.ComplexityHigh, got.ComplexityLevel)
}

func TestScore_BoundsOverCatalog(t *testing.T) {
	cat, err := catalog.LoadBuiltin(t.Context(), catalog.Options{})
	require.NoError(t, err)

	inputs := []string{
		"",
		"Write a creative story about AI",
		"Implement a binary search algorithm in Python",
		"Prove the theorem with an equation and run an experiment",
		words(80) + " story code math research",
	}
	s := New()
	for _, st := range cat.All() {
		for _, in := range inputs {
			got := s.Score(in, st)
			assert.GreaterOrEqual(t, got.Suitability, MinSuitability)
			assert.LessOrEqual(t, got.Suitability, MaxSuitability)
			assert.NotEmpty(t, got.Strengths)
		}
	}
}

func TestScore_MathStrategyFavorsMathInput(t *testing.T) {
	cat, err := catalog.LoadBuiltin(t.Context(), catalog.Options{})
	require.NoError(t, err)
	math, _ := cat.Get("math")
	verse, _ := cat.Get("verse")

	s := New()
	in := "Prove that the equation has no integer solutions for n greater than two using any method"
	assert.Greater(t, s.Score(in, math).Suitability, s.Score(in, verse).Suitability)
}
