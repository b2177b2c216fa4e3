// Package catalog loads and serves the immutable set of prompt strategies.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spboyer/promptplus/internal/models"
	"github.com/spboyer/promptplus/internal/validation"
	"github.com/spboyer/promptplus/metaprompts"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Defaults applied to records that omit a field.
const (
	DefaultDescription = "No description available"
	DefaultTemplate    = "No template available"
)

// DefaultConcurrency bounds parallel record reads during Load.
const DefaultConcurrency = 8

// Catalog maps strategy keys to records. It is never modified after
// construction and is safe for concurrent use.
type Catalog struct {
	byKey    map[string]models.Strategy
	keys     []string
	warnings []LoadWarning
}

// LoadWarning records a unit that was skipped during Load.
type LoadWarning struct {
	Unit string
	Err  error
}

func (w LoadWarning) String() string {
	return fmt.Sprintf("%s: %v", w.Unit, w.Err)
}

// Options control Load.
type Options struct {
	// Concurrency bounds parallel reads; zero means DefaultConcurrency.
	Concurrency int
	Logger      *slog.Logger
}

// New builds a catalog from in-memory strategies. Tags are derived from
// each description and unioned with any tags already set. Later duplicates
// of a key are ignored.
func New(strategies ...models.Strategy) *Catalog {
	c := &Catalog{byKey: make(map[string]models.Strategy, len(strategies))}
	for _, s := range strategies {
		c.add(s)
	}
	return c
}

func (c *Catalog) add(s models.Strategy) bool {
	if _, dup := c.byKey[s.Key]; dup {
		return false
	}
	s.Tags = models.DeriveTags(s.Description, s.Tags...)
	if s.Examples == nil {
		s.Examples = []string{}
	}
	c.byKey[s.Key] = s
	c.keys = append(c.keys, s.Key)
	return true
}

// Get returns the strategy for key. The returned value shares its slices
// with the catalog and must not be modified.
func (c *Catalog) Get(key string) (models.Strategy, bool) {
	if c == nil {
		return models.Strategy{}, false
	}
	s, ok := c.byKey[key]
	return s, ok
}

// Has reports whether key is in the catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Keys returns all keys in insertion order.
func (c *Catalog) Keys() []string {
	return slices.Clone(c.keys)
}

// All returns every strategy in insertion order.
func (c *Catalog) All() []models.Strategy {
	out := make([]models.Strategy, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.byKey[k])
	}
	return out
}

// Len returns the number of strategies.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Warnings returns the units skipped while loading.
func (c *Catalog) Warnings() []LoadWarning {
	return slices.Clone(c.warnings)
}

// Load reads every record unit in src. Units are read concurrently but the
// catalog is ordered by unit name. A unit that cannot be read, decompressed,
// validated or parsed is skipped with a warning; Load fails only if the
// source cannot be listed or ctx is canceled.
func Load(ctx context.Context, src Source, opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	names, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.Sort(names)

	type result struct {
		strategy models.Strategy
		err      error
	}
	results := make([]result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := src.Read(gctx, name)
			if err != nil {
				results[i].err = fmt.Errorf("reading: %w", err)
				return nil
			}
			results[i].strategy, results[i].err = decodeRecord(name, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	c := New()
	for i, name := range names {
		r := results[i]
		if r.err == nil && !c.add(r.strategy) {
			r.err = fmt.Errorf("duplicate key %q", r.strategy.Key)
		}
		if r.err != nil {
			logger.Warn("skipping strategy record", "unit", name, "error", r.err)
			c.warnings = append(c.warnings, LoadWarning{Unit: name, Err: r.err})
		}
	}
	logger.Debug("catalog loaded", "strategies", c.Len(), "skipped", len(c.warnings))
	return c, nil
}

// LoadDir loads a catalog from the records in dir.
func LoadDir(ctx context.Context, dir string, opts Options) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path %s is not a directory", dir)
	}
	return Load(ctx, NewFSSource(os.DirFS(dir)), opts)
}

// LoadBuiltin loads the catalog embedded in the binary.
func LoadBuiltin(ctx context.Context, opts Options) (*Catalog, error) {
	return Load(ctx, NewFSSource(metaprompts.FS), opts)
}

// record is the on-disk shape of a strategy. Pointers distinguish an
// absent field from an empty one.
type record struct {
	Name        string   `yaml:"name"`
	Description *string  `yaml:"description"`
	Examples    []string `yaml:"examples"`
	Template    *string  `yaml:"template"`
	Tags        []string `yaml:"tags"`
}

func decodeRecord(name string, data []byte) (models.Strategy, error) {
	key, ok := KeyFromName(name)
	if !ok {
		return models.Strategy{}, fmt.Errorf("unsupported record type")
	}

	if strings.HasSuffix(name, ".gz") {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return models.Strategy{}, fmt.Errorf("decompressing: %w", err)
		}
		data, err = io.ReadAll(io.LimitReader(zr, maxRecordBytes+1))
		zr.Close() //nolint:errcheck
		if err != nil {
			return models.Strategy{}, fmt.Errorf("decompressing: %w", err)
		}
		if len(data) > maxRecordBytes {
			return models.Strategy{}, fmt.Errorf("decompressed record exceeds %d bytes", maxRecordBytes)
		}
	}

	if errs := validation.ValidateStrategyBytes(data); len(errs) > 0 {
		return models.Strategy{}, fmt.Errorf("invalid record: %s", strings.Join(errs, "; "))
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return models.Strategy{}, fmt.Errorf("parsing: %w", err)
	}

	s := models.Strategy{
		Key:         key,
		Name:        rec.Name,
		Description: DefaultDescription,
		Examples:    rec.Examples,
		Template:    DefaultTemplate,
	}
	if s.Name == "" {
		s.Name = key
	}
	if rec.Description != nil {
		s.Description = *rec.Description
	}
	if rec.Template != nil {
		s.Template = *rec.Template
	}
	for _, raw := range rec.Tags {
		if tag, ok := models.ParseTag(raw); ok {
			s.Tags = append(s.Tags, tag)
		}
	}
	return s, nil
}
