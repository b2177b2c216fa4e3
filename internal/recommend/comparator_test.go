package recommend

import (
	"testing"

	"github.com/spboyer/promptplus/internal/catalog"
	"github.com/spboyer/promptplus/internal/models"
	"github.com/spboyer/promptplus/internal/scoring"
	"github.com/spboyer/promptplus/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComparator(cat *catalog.Catalog) *Comparator {
	return NewComparator(cat, selector.New(cat), scoring.New())
}

func builtin(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.LoadBuiltin(t.Context(), catalog.Options{})
	require.NoError(t, err)
	return cat
}

func TestCompare_OnlyKnownKeysScored(t *testing.T) {
	cat := catalog.New(models.Strategy{Key: "a", Name: "Alpha"})
	cmp := newComparator(cat)

	got := cmp.Compare("Create a machine learning model for sentiment analysis", []string{"a", "b", "c"})
	require.Len(t, got.Candidates, 1)
	assert.Equal(t, "a", got.Candidates[0].Key)
	assert.True(t, got.HasRecommendation)
	assert.Equal(t, "a", got.Recommendation)
	assert.Equal(t, "Based on the analysis, 'Alpha' is the best fit due to its general purpose", got.Reasoning)
}

func TestCompare_EmptyCandidateSet(t *testing.T) {
	cmp := newComparator(builtin(t))

	for name, keys := range map[string][]string{
		"empty list":   {},
		"unknown only": {"bogus"},
		"blank keys":   {"", ""},
	} {
		t.Run(name, func(t *testing.T) {
			got := cmp.Compare("anything at all", keys)
			assert.Empty(t, got.Candidates)
			assert.NotNil(t, got.Candidates)
			assert.False(t, got.HasRecommendation)
			assert.Empty(t, got.Recommendation)
			assert.Equal(t, NoCandidatesReasoning, got.Reasoning)

			_, ok := got.Winner()
			assert.False(t, ok)
		})
	}
}

func TestCompare_EmptyCatalogWithDefaults(t *testing.T) {
	cmp := newComparator(catalog.New())
	got := cmp.Compare("Write a story", nil)
	assert.False(t, got.HasRecommendation)
	assert.Empty(t, got.Candidates)
}

func TestCandidates(t *testing.T) {
	cmp := newComparator(builtin(t))

	tests := []struct {
		name  string
		input string
		keys  []string
		want  []string
	}{
		{name: "derived creative", input: "Write a creative story about AI", want: []string{"star", "verse", "physics"}},
		{name: "derived analytical dedupes physics", input: "analyze the data", want: []string{"physics", "verse"}},
		{name: "derived math", input: "prove the theorem", want: []string{"math", "arpe", "physics"}},
		{name: "explicit dedupe", keys: []string{"b", "a", "b", "a"}, want: []string{"b", "a"}},
		{name: "explicit not capped", keys: []string{"a", "b", "c", "d"}, want: []string{"a", "b", "c", "d"}},
		{name: "explicit empty", keys: []string{}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cmp.Candidates(tt.input, tt.keys))
		})
	}
}

func TestCompare_TieGoesToFirstCandidate(t *testing.T) {
	cat := catalog.New(
		models.Strategy{Key: "first", Name: "First"},
		models.Strategy{Key: "second", Name: "Second"},
	)
	cmp := newComparator(cat)

	got := cmp.Compare("plain words", []string{"second", "first"})
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, got.Candidates[0].Suitability, got.Candidates[1].Suitability)
	assert.Equal(t, "second", got.Recommendation)
	assert.Equal(t, 1, got.Candidates[0].Rank)
	assert.Equal(t, 2, got.Candidates[1].Rank)
}

func TestCompare_HigherSuitabilityWins(t *testing.T) {
	cmp := newComparator(builtin(t))

	got := cmp.Compare("Prove the theorem using an equation", []string{"verse", "physics", "math", "arpe"})
	require.Len(t, got.Candidates, 4)
	assert.Equal(t, []string{"verse", "physics", "math", "arpe"},
		[]string{got.Candidates[0].Key, got.Candidates[1].Key, got.Candidates[2].Key, got.Candidates[3].Key},
		"candidates keep evaluation order")
	assert.Equal(t, "math", got.Recommendation, "math and arpe tie; math is evaluated first")
	assert.Contains(t, got.Reasoning, "mathematical reasoning")

	winner, ok := got.Winner()
	require.True(t, ok)
	assert.Equal(t, 1, winner.Rank)
	assert.Equal(t, 80, winner.Suitability)
}

func TestCompare_DefaultCandidates(t *testing.T) {
	cmp := newComparator(builtin(t))

	got := cmp.Compare("Write a creative story about AI", nil)
	require.Len(t, got.Candidates, 3)
	assert.Equal(t, "star", got.Candidates[0].Key)
	assert.True(t, got.HasRecommendation)
	for _, c := range got.Candidates {
		assert.NotEmpty(t, c.Strengths)
		assert.Equal(t, models.ComplexityLow, c.ComplexityLevel)
	}
}
