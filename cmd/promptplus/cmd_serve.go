package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spboyer/promptplus/internal/dispatch"
	"github.com/spboyer/promptplus/internal/jsonrpc"
	"github.com/spboyer/promptplus/internal/mcp"
	"github.com/spboyer/promptplus/internal/webserver"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	jsonrpc        bool
	tcpAddr        string
	tcpAllowRemote bool
	http           bool
	host           string
	port           int
}

func newServeCommand(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve strategies over MCP, JSON-RPC or HTTP",
		Long: `Serve the strategy catalog to editors and agents.

By default the server speaks the Model Context Protocol over stdin/stdout,
exposing every strategy as a tool and as a prompt.

Use --jsonrpc to speak plain JSON-RPC 2.0 on stdio instead, or --tcp to
serve JSON-RPC over TCP. TCP defaults to loopback (127.0.0.1). Use
--tcp-allow-remote to bind to all interfaces.

Use --http to start the REST API.

JSON-RPC methods:
  strategy.list     List strategies
  strategy.get      Get one strategy
  strategy.select   Recommend a strategy for a prompt
  strategy.compare  Score strategies against a prompt
  prompt.refine     Render a strategy's instruction for a prompt
  prompt.auto       Select and render in one call
  prompt.router     Render the router instruction
  response.parse    Parse a model's refinement response`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.http && (opts.jsonrpc || opts.tcpAddr != "") {
				return fmt.Errorf("--http cannot be combined with --jsonrpc or --tcp")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := a.dispatcher(ctx)
			if err != nil {
				return err
			}
			return runServe(ctx, a, d, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonrpc, "jsonrpc", false, "Speak plain JSON-RPC 2.0 on stdio instead of MCP")
	cmd.Flags().StringVar(&opts.tcpAddr, "tcp", "", "Serve JSON-RPC over TCP on this address (e.g., :9000)")
	cmd.Flags().BoolVar(&opts.tcpAllowRemote, "tcp-allow-remote", false,
		"Allow binding to non-loopback addresses (WARNING: exposes the server to the network with no authentication)")
	cmd.Flags().BoolVar(&opts.http, "http", false, "Serve the HTTP API")
	cmd.Flags().StringVar(&opts.host, "host", "127.0.0.1", "HTTP host to bind")
	cmd.Flags().IntVar(&opts.port, "port", 0, "HTTP port (defaults to server.port in .promptplus.yaml)")

	return cmd
}

func runServe(ctx context.Context, a *app, d *dispatch.Dispatcher, opts serveOptions) error {
	logger := a.logger

	switch {
	case opts.http:
		port := opts.port
		if port == 0 {
			port = a.cfg.Server.Port
		}
		srv, err := webserver.New(webserver.Config{
			Host:        opts.host,
			Port:        port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			Service:     d,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		logger.Info("HTTP API listening", "address", "http://"+srv.Addr())
		return srv.ListenAndServe(ctx)

	case opts.tcpAddr != "":
		addr := resolveTCPAddr(opts.tcpAddr, opts.tcpAllowRemote, logger)
		listener, err := jsonrpc.NewTCPListener(addr, newRPCServer(d, logger), logger)
		if err != nil {
			return fmt.Errorf("failed to start TCP server: %w", err)
		}
		logger.Info("JSON-RPC server listening", "address", listener.Addr().String())
		return listener.Serve(ctx)

	case opts.jsonrpc:
		logger.Info("JSON-RPC server running on stdio")
		return serveJSONRPCStdio(ctx, d, os.Stdin, os.Stdout, logger)

	default:
		logger.Info("MCP server running on stdio", "strategies", d.Catalog().Len())
		mcp.ServeStdio(ctx, d, os.Stdin, os.Stdout, logger)
		return nil
	}
}

// serveJSONRPCStdio announces the catalog with a catalog.loaded
// notification, then answers requests until r is exhausted.
func serveJSONRPCStdio(ctx context.Context, d *dispatch.Dispatcher, r io.Reader, w io.Writer, logger *slog.Logger) error {
	t := jsonrpc.NewTransport(r, w)
	cat := d.Catalog()
	if err := t.WriteNotification(jsonrpc.CatalogLoaded(cat.Len(), len(cat.Warnings()))); err != nil {
		return fmt.Errorf("writing catalog.loaded: %w", err)
	}
	jsonrpc.Serve(ctx, t, newRPCServer(d, logger), logger)
	return nil
}

func newRPCServer(d *dispatch.Dispatcher, logger *slog.Logger) *jsonrpc.Server {
	registry := jsonrpc.NewMethodRegistry()
	jsonrpc.RegisterHandlers(registry, jsonrpc.NewHandlerContext(d))
	return jsonrpc.NewServer(registry, logger)
}

// resolveTCPAddr ensures TCP addresses default to loopback unless --tcp-allow-remote is set.
func resolveTCPAddr(addr string, allowRemote bool, logger *slog.Logger) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// Likely just a port like "9000"; treat as ":9000".
		host = ""
		port = addr
	}

	if allowRemote {
		logger.Warn("TCP server binding to all interfaces, no authentication is provided", "address", addr)
		if host == "" {
			return net.JoinHostPort("", port)
		}
		return addr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		return net.JoinHostPort("127.0.0.1", port)
	}

	return addr
}
