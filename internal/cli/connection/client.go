package connection

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/yndnr/discountd/internal/core/domain"
	"github.com/yndnr/discountd/internal/server/codeserver"
)

// DefaultTimeout bounds a request when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// ErrClosed is returned when a request is made on a closed client.
var ErrClosed = errors.New("connection: client closed")

// Client is a TCP client for the discount server.
type Client struct {
	addr    string
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout used when ctx has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Dial connects to the server at addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	c := &Client{
		addr:    addr,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c.conn = conn
	c.br = bufio.NewReader(conn)
	c.bw = bufio.NewWriter(conn)
	c.logger.Debug("connected", "server", addr)
	return c, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Generate asks the server to create count codes of the given length.
func (c *Client) Generate(ctx context.Context, count uint16, length uint8) (bool, error) {
	var frame bytes.Buffer
	if err := codeserver.WriteGenerateRequest(&frame, count, length); err != nil {
		return false, fmt.Errorf("generate: %w", err)
	}

	var ok bool
	err := c.roundTrip(ctx, frame.Bytes(), func(r *bufio.Reader) error {
		var err error
		ok, err = codeserver.ReadGenerateResponse(r)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("generate: %w", err)
	}
	c.logger.Debug("generate", "count", count, "length", length, "ok", ok)
	return ok, nil
}

// Use redeems code on the server.
//
// Codes that cannot be framed (longer than 8 bytes or non-ASCII) fail
// locally with domain.ErrProtocol and leave the connection usable.
func (c *Client) Use(ctx context.Context, code string) (domain.UseResult, error) {
	var frame bytes.Buffer
	if err := codeserver.WriteUseRequest(&frame, code); err != nil {
		return 0, fmt.Errorf("use: %w", err)
	}

	var result domain.UseResult
	err := c.roundTrip(ctx, frame.Bytes(), func(r *bufio.Reader) error {
		var err error
		result, err = codeserver.ReadUseResponse(r)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("use: %w", err)
	}
	c.logger.Debug("use", "code", code, "result", result.String())
	return result, nil
}

// roundTrip writes frame and reads one response. Any failure leaves the
// stream out of step with the server, so the connection is dropped.
func (c *Client) roundTrip(ctx context.Context, frame []byte, read func(*bufio.Reader) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrClosed
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return err
	}

	// Unblock I/O when ctx is cancelled before the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	err := c.exchange(frame, read)
	if err != nil {
		c.logger.Warn("request failed, closing connection", "server", c.addr, "error", err)
		_ = c.conn.Close()
		c.conn = nil
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

func (c *Client) exchange(frame []byte, read func(*bufio.Reader) error) error {
	if _, err := c.bw.Write(frame); err != nil {
		return err
	}
	if err := c.bw.Flush(); err != nil {
		return err
	}
	return read(c.br)
}

// Closed reports whether the connection has been closed, either by Close
// or after a failed request.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn == nil
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
