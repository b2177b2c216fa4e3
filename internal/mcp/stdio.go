package mcp

import (
	"context"
	"io"
	"log/slog"

	"github.com/spboyer/promptplus/internal/dispatch"
	"github.com/spboyer/promptplus/internal/jsonrpc"
)

// ServeStdio runs the MCP server on the given reader/writer (typically stdin/stdout).
// It reads newline-delimited JSON-RPC requests and writes responses until
// r is exhausted or ctx is canceled.
func ServeStdio(ctx context.Context, d *dispatch.Dispatcher, r io.Reader, w io.Writer, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	jsonrpc.Serve(ctx, jsonrpc.NewTransport(r, w), NewServer(d, logger), logger)
}
