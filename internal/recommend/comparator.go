// Package recommend compares candidate strategies for an input and picks
// the best fit.
package recommend

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spboyer/promptplus/internal/models"
	"github.com/spboyer/promptplus/internal/scoring"
	"github.com/spboyer/promptplus/internal/selector"
)

// DefaultThirdCandidate is appended to the auto-selected pair when the
// caller names no candidates.
const DefaultThirdCandidate = selector.KeyPhysics

// MaxDefaultCandidates caps the derived candidate list.
const MaxDefaultCandidates = 3

// NoCandidatesReasoning is reported when nothing could be scored.
const NoCandidatesReasoning = "No known strategies to compare"

// Comparator scores several strategies against one input.
type Comparator struct {
	lookup   selector.Lookup
	selector *selector.Selector
	scorer   *scoring.Scorer
}

// NewComparator creates a Comparator over lookup.
func NewComparator(lookup selector.Lookup, sel *selector.Selector, scorer *scoring.Scorer) *Comparator {
	return &Comparator{lookup: lookup, selector: sel, scorer: scorer}
}

// Candidates returns the keys Compare evaluates, before catalog filtering.
// A nil keys slice derives [recommended, alternative, DefaultThirdCandidate]
// from auto-selection; a non-nil slice is used as given. Both are
// deduplicated preserving first-seen order.
func (c *Comparator) Candidates(text string, keys []string) []string {
	if keys == nil {
		sel := c.selector.AutoSelect(text)
		derived := dedupe([]string{sel.Recommended, sel.Alternative, DefaultThirdCandidate})
		return derived[:min(len(derived), MaxDefaultCandidates)]
	}
	return dedupe(keys)
}

// Compare scores each known candidate and recommends the one with the
// highest suitability. On a tie the candidate evaluated first wins. Unknown
// keys are skipped; when none remain the result has no recommendation.
func (c *Comparator) Compare(text string, keys []string) models.ComparisonResult {
	result := models.ComparisonResult{
		Input:      text,
		Candidates: []models.CandidateScore{},
	}

	for _, key := range c.Candidates(text, keys) {
		st, ok := c.lookup.Get(key)
		if !ok {
			continue
		}
		result.Candidates = append(result.Candidates, models.CandidateScore{
			Key:         key,
			Name:        st.Name,
			ScoreResult: c.scorer.Score(text, st),
		})
	}

	if len(result.Candidates) == 0 {
		result.Reasoning = NoCandidatesReasoning
		return result
	}

	rankCandidates(result.Candidates)
	best := result.Candidates[0]
	for _, cand := range result.Candidates[1:] {
		if cand.Suitability > best.Suitability {
			best = cand
		}
	}

	result.Recommendation = best.Key
	result.HasRecommendation = true
	result.Reasoning = fmt.Sprintf("Based on the analysis, '%s' is the best fit due to its %s",
		best.Name, strings.Join(best.Strengths, ", "))
	return result
}

// rankCandidates assigns Rank by descending suitability without reordering.
// Stable sorting keeps evaluation order among equal scores.
func rankCandidates(cands []models.CandidateScore) {
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cands[order[a]].Suitability > cands[order[b]].Suitability
	})
	for rank, idx := range order {
		cands[idx].Rank = rank + 1
	}
}

func dedupe(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || slices.Contains(out, k) {
			continue
		}
		out = append(out, k)
	}
	return out
}
