package codeserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/discountd/internal/telemetry/logger"
	"github.com/yndnr/discountd/internal/telemetry/metric"
)

// Config holds the TCP server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string
	// PollInterval bounds how long an idle connection blocks before it
	// rechecks for shutdown (default: 50ms).
	PollInterval time.Duration
	// ReadTimeout is the timeout for reading the rest of a frame once its
	// first byte arrived (default: 30s).
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// RateLimit is the maximum number of requests per second per connection.
	// Set to 0 to disable rate limiting.
	RateLimit float64
	// CloseOnUnknownOpcode closes the connection after an unknown opcode
	// instead of skipping the byte.
	CloseOnUnknownOpcode bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:5000",
		PollInterval: 50 * time.Millisecond,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server accepts TCP connections and serves the binary protocol.
type Server struct {
	cfg     *Config
	handler *RequestHandler
	logger  *slog.Logger
	metrics *metric.Registry

	lnMu sync.Mutex
	ln   net.Listener

	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Conn represents a single client connection.
type Conn struct {
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer
	id      string

	closed atomic.Bool
}

func newConn(c net.Conn) *Conn {
	return &Conn{
		netConn: c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
		id:      ulid.Make().String(),
	}
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// ID returns the connection's ULID.
func (c *Conn) ID() string {
	return c.id
}

// New creates a TCP server dispatching to svc.
func New(cfg *Config, svc CodeService, log *slog.Logger, metrics *metric.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}

	return &Server{
		cfg:     cfg,
		handler: NewRequestHandler(svc, metrics),
		logger:  log,
		metrics: metrics,
		stopCh:  make(chan struct{}),
	}
}

// Listen binds the listen address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.lnMu.Lock()
	s.ln = ln
	s.lnMu.Unlock()
	s.logger.Info("server started", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve runs the accept loop until ctx is cancelled or Shutdown is called.
// Listen must have been called.
func (s *Server) Serve(ctx context.Context) error {
	s.wg.Add(1)
	defer s.wg.Done()
	return s.serve(ctx)
}

// ListenAndServe binds the listen address and runs the accept loop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.serve(ctx); err != nil {
			s.logger.Error("server error", "error", err)
		}
	}()
	return nil
}

func (s *Server) serve(ctx context.Context) error {
	s.lnMu.Lock()
	ln := s.ln
	s.lnMu.Unlock()
	if ln == nil {
		return errors.New("codeserver: Serve called before Listen")
	}

	s.running.Store(true)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.stopCh:
			cancel()
		}
		s.running.Store(false)
		_ = ln.Close()
	}()

	err := s.acceptLoop(ctx, ln)
	s.logger.Info("server shutting down")
	return err
}

// Shutdown closes the listener and waits for every connection to finish
// its current request.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	s.stopOnce.Do(func() { close(s.stopCh) })

	s.lnMu.Lock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.lnMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, newConn(c))
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer c.Close()

	s.metrics.ConnectionsTotal.Inc()
	s.metrics.ConnectionsActive.Inc()
	defer s.metrics.ConnectionsActive.Dec()

	ctx = logger.WithConnID(logger.WithLogger(ctx, s.logger), c.ID())
	log := logger.L(ctx)
	log.Info("client connected", "remote", c.RemoteAddr().String())
	defer log.Info("client connection closed")

	var limiter *rate.Limiter
	if s.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), max(1, int(s.cfg.RateLimit)))
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug("client handler canceled due to server shutdown")
			return
		default:
		}

		// Idle wait: short deadline so shutdown is noticed promptly.
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.PollInterval)); err != nil {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			if isTimeout(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				log.Info("client disconnected")
				return
			}
			log.Warn("connection read error", "error", err)
			return
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				log.Debug("rate limiter wait aborted", "error", err)
				return
			}
		}

		// The frame has started; the rest must arrive within ReadTimeout.
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return
		}
		req, err := ReadRequest(c.br)
		if err != nil {
			switch {
			case errors.Is(err, io.ErrUnexpectedEOF):
				log.Warn("client disconnected mid-frame")
			case isTimeout(err):
				log.Warn("timed out reading frame")
			default:
				log.Warn("error handling client", "error", err)
			}
			return
		}

		responded, err := s.handler.Handle(ctx, c.bw, req)
		if err != nil {
			log.Warn("encode response failed", "error", err)
			return
		}
		if !responded {
			if s.cfg.CloseOnUnknownOpcode {
				return
			}
			continue
		}

		if err := c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return
		}
		if err := c.bw.Flush(); err != nil {
			log.Warn("write response failed", "error", err)
			return
		}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
