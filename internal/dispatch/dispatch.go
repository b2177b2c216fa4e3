// Package dispatch exposes the strategy operations over a single catalog.
// Every transport (MCP, JSON-RPC, HTTP, CLI) goes through a Dispatcher.
package dispatch

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spboyer/promptplus/internal/catalog"
	"github.com/spboyer/promptplus/internal/models"
	"github.com/spboyer/promptplus/internal/recommend"
	"github.com/spboyer/promptplus/internal/refinement"
	"github.com/spboyer/promptplus/internal/scoring"
	"github.com/spboyer/promptplus/internal/selector"
	"github.com/spboyer/promptplus/internal/template"
)

// PreviewLength is the number of template characters shown in details.
const PreviewLength = 200

// Dispatcher composes the selector, scorer, comparator and renderer over
// one immutable catalog. It is safe for concurrent use.
type Dispatcher struct {
	catalog    *catalog.Catalog
	selector   *selector.Selector
	comparator *recommend.Comparator
	renderer   *template.Renderer
	logger     *slog.Logger
}

// New builds a Dispatcher over cat. A nil logger uses slog.Default.
func New(cat *catalog.Catalog, logger *slog.Logger) *Dispatcher {
	if cat == nil {
		cat = catalog.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	sel := selector.New(cat)
	return &Dispatcher{
		catalog:    cat,
		selector:   sel,
		comparator: recommend.NewComparator(cat, sel, scoring.New()),
		renderer:   template.NewRenderer(cat),
		logger:     logger,
	}
}

// Catalog returns the underlying catalog.
func (d *Dispatcher) Catalog() *catalog.Catalog {
	return d.catalog
}

// Strategy returns the record for key.
func (d *Dispatcher) Strategy(key string) (models.Strategy, error) {
	st, ok := d.catalog.Get(key)
	if !ok {
		return models.Strategy{}, &models.NotFoundError{Key: key}
	}
	return st, nil
}

// Strategies returns every record in catalog order.
func (d *Dispatcher) Strategies() []models.Strategy {
	return d.catalog.All()
}

// ListStrategies returns a summary for every strategy, keyed by strategy key.
func (d *Dispatcher) ListStrategies() map[string]models.StrategySummary {
	out := make(map[string]models.StrategySummary, d.catalog.Len())
	for _, st := range d.catalog.All() {
		out[st.Key] = models.StrategySummary{
			Name:        st.Name,
			Description: st.Description,
			Examples:    nonNil(st.Examples),
			PromptName:  st.PromptName(),
		}
	}
	return out
}

// GetStrategyDetails returns the full record of key with a template preview.
func (d *Dispatcher) GetStrategyDetails(key string) (models.StrategyDetails, error) {
	st, err := d.Strategy(key)
	if err != nil {
		return models.StrategyDetails{}, err
	}
	tags := st.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	return models.StrategyDetails{
		Key:             st.Key,
		Name:            st.Name,
		Description:     st.Description,
		Examples:        nonNil(st.Examples),
		Tags:            tags,
		PromptName:      st.PromptName(),
		TemplatePreview: template.Preview(st.Template, PreviewLength),
		Template:        st.Template,
	}, nil
}

// AutoSelect recommends a strategy for text.
func (d *Dispatcher) AutoSelect(text string) models.SelectionResult {
	res := d.selector.AutoSelect(text)
	d.logger.Debug("strategy selected",
		"strategy", res.Recommended,
		"alternative", res.Alternative,
		"words", res.Features.WordCount,
		"type", res.Features.DetectedType,
	)
	return res
}

// Refine renders the template of key with text.
func (d *Dispatcher) Refine(text, key string) (models.RenderedInstruction, error) {
	out, err := d.renderer.Render(text, key)
	if err != nil {
		d.logger.Debug("refine failed", "strategy", key, "error", err)
		return models.RenderedInstruction{}, err
	}
	return out, nil
}

// AutoRefine selects a strategy for text and renders it. The selection is
// returned even when the chosen key is missing from a custom catalog.
func (d *Dispatcher) AutoRefine(text string) (models.RenderedInstruction, models.SelectionResult, error) {
	sel := d.AutoSelect(text)
	out, err := d.Refine(text, sel.Recommended)
	if err != nil {
		return models.RenderedInstruction{}, sel, err
	}
	return out, sel, nil
}

// Compare scores text against keys. A nil keys slice compares the
// recommended, alternative and physics strategies.
func (d *Dispatcher) Compare(text string, keys []string) models.ComparisonResult {
	res := d.comparator.Compare(text, keys)
	d.logger.Debug("strategies compared",
		"candidates", len(res.Candidates),
		"recommendation", res.Recommendation,
	)
	return res
}

// RouterPrompt builds an instruction asking a model to pick the best
// strategy for text from the whole catalog.
func (d *Dispatcher) RouterPrompt(text string) (string, error) {
	out, err := template.RouterPrompt(text, d.catalog.All())
	if err != nil {
		return "", fmt.Errorf("building router prompt: %w", err)
	}
	return out, nil
}

// ParseResponse extracts the refinement fields from a model's reply.
func (d *Dispatcher) ParseResponse(raw string) *models.RefinementOutput {
	out := refinement.Parse(raw)
	if out.Degraded {
		d.logger.Debug("degraded refinement response", "source", out.Source, "bytes", len(raw))
	}
	return out
}

// ParseRouterResponse extracts the recommendation from a reply to a
// router prompt.
func (d *Dispatcher) ParseRouterResponse(raw string) *models.RouterRecommendation {
	return refinement.ParseRouter(raw)
}

// SplitKeys turns a comma-separated key list into a slice. An empty string
// yields nil so Compare falls back to its default candidates.
func SplitKeys(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var keys []string
	for part := range strings.SplitSeq(s, ",") {
		if k := strings.TrimSpace(part); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
