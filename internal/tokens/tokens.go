// Package tokens estimates how many model tokens a rendered instruction
// will consume.
package tokens

import (
	"math"
	"unicode/utf8"
)

// charsPerToken is the usual ratio for English text on BPE tokenizers.
const charsPerToken = 4

// Counter counts tokens in text.
type Counter interface {
	Count(text string) int
}

// EstimatingCounter approximates token count as ~4 characters per token.
type EstimatingCounter struct{}

func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{}
}

func (*EstimatingCounter) Count(text string) int {
	return Estimate(text)
}

// Estimate counts characters rather than bytes so non-ASCII prompts are
// not overcounted.
func Estimate(text string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / float64(charsPerToken)))
}
