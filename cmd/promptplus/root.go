package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spboyer/promptplus/internal/catalog"
	"github.com/spboyer/promptplus/internal/dispatch"
	"github.com/spboyer/promptplus/internal/mcp"
	"github.com/spboyer/promptplus/internal/projectconfig"
	"github.com/spboyer/promptplus/internal/spinner"
	"github.com/spboyer/promptplus/internal/webapi"
	"github.com/spf13/cobra"
)

var version = "dev"

// app carries the state shared by every subcommand.
type app struct {
	cfg        *projectconfig.ProjectConfig
	logger     *slog.Logger
	catalogDir string
	jsonOut    bool
	debug      bool
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "promptplus",
		Short: "Promptplus - metaprompt strategies for refining prompts",
		Long: `Promptplus is a command-line tool and server for metaprompt strategies.

It recommends a refinement strategy for a prompt, fills the strategy's
template with the prompt, and compares strategies side by side. The
resulting instructions are meant to be executed by a language model of
your choice.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Print results as JSON")
	cmd.PersistentFlags().StringVar(&a.catalogDir, "catalog", "", "Directory of strategy records (overrides .promptplus.yaml)")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.setup(cmd.ErrOrStderr())
	}

	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newListCommand(a))
	cmd.AddCommand(newShowCommand(a))
	cmd.AddCommand(newSelectCommand(a))
	cmd.AddCommand(newRefineCommand(a))
	cmd.AddCommand(newCompareCommand(a))
	cmd.AddCommand(newRouterCommand(a))
	cmd.AddCommand(newParseCommand(a))
	cmd.AddCommand(newValidateCommand(a))

	return cmd
}

func execute() error {
	mcp.Version = version
	webapi.Version = version
	return newRootCommand().ExecuteContext(context.Background())
}

// setup loads .promptplus.yaml and installs the logger. Logs go to stderr
// so stdio transports keep stdout for protocol messages.
func (a *app) setup(stderr io.Writer) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(stderr, cfg.Log, a.debug)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)
	if cfg.Path != "" {
		logger.Debug("loaded project config", "path", cfg.Path)
	}
	return nil
}

func newLogger(w io.Writer, cfg projectconfig.LogConfig, debug bool) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// loadCatalog loads strategies from, in order of precedence, --catalog,
// catalog.dir, catalog.blob, or the embedded catalog.
func (a *app) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	opts := catalog.Options{Concurrency: a.cfg.Catalog.Concurrency, Logger: a.logger}

	var (
		cat *catalog.Catalog
		err error
	)
	switch {
	case a.catalogDir != "":
		cat, err = catalog.LoadDir(ctx, a.catalogDir, opts)
	case a.cfg.Catalog.Dir != "":
		cat, err = catalog.LoadDir(ctx, a.cfg.Catalog.Dir, opts)
	case a.cfg.Catalog.Blob.Enabled():
		blob := a.cfg.Catalog.Blob
		var src *catalog.BlobSource
		src, err = catalog.NewBlobSource(blob.AccountURL, blob.Container, blob.Prefix)
		if err == nil {
			stop := func() {}
			if isTerminal(os.Stderr) && !a.debug {
				stop = spinner.Start(os.Stderr, "Loading strategies from "+blob.Container)
			}
			cat, err = catalog.Load(ctx, src, opts)
			stop()
		}
	default:
		cat, err = catalog.LoadBuiltin(ctx, opts)
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// dispatcher loads the catalog and wraps it. An empty catalog is an error
// for every command but validate.
func (a *app) dispatcher(ctx context.Context) (*dispatch.Dispatcher, error) {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		return nil, fmt.Errorf("catalog contains no valid strategies (%d skipped)", len(cat.Warnings()))
	}
	return dispatch.New(cat, a.logger), nil
}
