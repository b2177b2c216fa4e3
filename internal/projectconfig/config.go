// Package projectconfig provides the ProjectConfig struct and loader for
// .promptplus.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up from the working directory.
const FileName = ".promptplus.yaml"

// maxSearchDepth bounds the upward directory walk.
const maxSearchDepth = 10

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultCatalogConcurrency = 8
	DefaultServerPort         = 3000
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

// BlobConfig locates a catalog stored in Azure Blob Storage.
type BlobConfig struct {
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
	Prefix     string `yaml:"prefix,omitempty"`
}

// Enabled reports whether a blob catalog is configured.
func (b BlobConfig) Enabled() bool {
	return b.AccountURL != "" && b.Container != ""
}

// CatalogConfig selects where strategies are loaded from. With neither a
// directory nor a blob container, the embedded catalog is used.
type CatalogConfig struct {
	Dir         string     `yaml:"dir,omitempty"`
	Blob        BlobConfig `yaml:"blob,omitempty"`
	Concurrency int        `yaml:"concurrency,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port,omitempty"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .promptplus.yaml.
type ProjectConfig struct {
	Catalog CatalogConfig `yaml:"catalog,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`

	// Path is the file the values were read from; empty when defaults only.
	Path string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Catalog: CatalogConfig{
			Concurrency: DefaultCatalogConcurrency,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load finds .promptplus.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Path = path

	// A relative catalog dir is relative to the config file.
	if cfg.Catalog.Dir != "" && !filepath.IsAbs(cfg.Catalog.Dir) {
		cfg.Catalog.Dir = filepath.Join(filepath.Dir(path), cfg.Catalog.Dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .promptplus.yaml.
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxSearchDepth {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Catalog
	if src.Catalog.Dir != "" {
		dst.Catalog.Dir = src.Catalog.Dir
	}
	if src.Catalog.Blob.AccountURL != "" {
		dst.Catalog.Blob.AccountURL = src.Catalog.Blob.AccountURL
	}
	if src.Catalog.Blob.Container != "" {
		dst.Catalog.Blob.Container = src.Catalog.Blob.Container
	}
	if src.Catalog.Blob.Prefix != "" {
		dst.Catalog.Blob.Prefix = src.Catalog.Blob.Prefix
	}
	if src.Catalog.Concurrency != 0 {
		dst.Catalog.Concurrency = src.Catalog.Concurrency
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = src.Server.CORSOrigins
	}

	// Log
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.Log.Format = src.Log.Format
	}
}

// Validate reports the first invalid setting.
func (c *ProjectConfig) Validate() error {
	if c.Catalog.Concurrency < 0 {
		return fmt.Errorf("catalog.concurrency must be positive, got %d", c.Catalog.Concurrency)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Catalog.Dir != "" && c.Catalog.Blob.Enabled() {
		return errors.New("catalog.dir and catalog.blob are mutually exclusive")
	}
	if (c.Catalog.Blob.AccountURL == "") != (c.Catalog.Blob.Container == "") {
		return errors.New("catalog.blob needs both account_url and container")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level into a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
