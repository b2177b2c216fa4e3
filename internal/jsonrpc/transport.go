package jsonrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
)

// Transport reads requests and writes responses over a byte stream of
// newline-delimited JSON messages.
type Transport struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
}

func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// ReadRequest reads one request line. The raw bytes are returned alongside
// so callers can tell notifications from calls.
func (t *Transport) ReadRequest() (*Request, []byte, error) {
	line, err := t.reader.ReadBytes('\n')
	if err != nil {
		return nil, nil, err
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &req, line, nil
}

func (t *Transport) WriteResponse(resp *Response) error {
	return t.writeLine(resp)
}

func (t *Transport) WriteNotification(notif *Notification) error {
	return t.writeLine(notif)
}

func (t *Transport) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err = t.writer.Write(data)
	return err
}

// TCPListener serves each accepted connection as its own session.
type TCPListener struct {
	listener net.Listener
	handler  RequestHandler
	logger   *slog.Logger
}

func NewTCPListener(addr string, h RequestHandler, logger *slog.Logger) (*TCPListener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return &TCPListener{listener: ln, handler: h, logger: logger}, nil
}

func (tl *TCPListener) Addr() net.Addr {
	return tl.listener.Addr()
}

// Serve accepts connections until ctx is canceled or the listener is
// closed. Canceling ctx closes open sessions and returns nil. Serve does not
// return before every session goroutine has exited.
func (tl *TCPListener) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	stopListener := context.AfterFunc(ctx, func() {
		tl.listener.Close() //nolint:errcheck
	})
	defer stopListener()

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	for {
		conn, err := tl.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		tl.logger.Debug("jsonrpc connection", "remote", conn.RemoteAddr().String())
		wg.Go(func() {
			defer conn.Close() //nolint:errcheck
			stopConn := context.AfterFunc(ctx, func() {
				conn.Close() //nolint:errcheck
			})
			defer stopConn()
			Serve(ctx, NewTransport(conn, conn), tl.handler, tl.logger)
		})
	}
}

func (tl *TCPListener) Close() error {
	return tl.listener.Close()
}
