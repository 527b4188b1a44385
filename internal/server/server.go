// Package server implements the engine's accept loop: single-threaded,
// synchronous, one connection fully handled (accepted, parsed, routed,
// closed) before the next is accepted. This trades the usual
// goroutine-per-connection throughput for a simpler, entirely sequential
// request lifecycle -- the right tradeoff for an embeddable engine whose
// caller controls its own concurrency.
package server

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"httpd/internal/httperr"
	"httpd/internal/httplog"
	"httpd/internal/httpmetrics"
	"httpd/internal/httpparse"
	"httpd/internal/httpsock"
	"httpd/internal/ioreader"
	"httpd/internal/path"
	"httpd/internal/request"
	"httpd/internal/response"
)

// Handler handles one matched request. It must use resp to send a
// response (Send, then any WriteBodyChunk calls) before returning.
type Handler func(resp *response.Writer, req *request.Request)

type route struct {
	pattern path.Pattern
	handler Handler
}

// ConnContext is the per-connection record the loop builds on accept: an
// ID for correlating log lines and metrics across a connection's stages,
// the formatted peer address, and when the connection was accepted. It
// carries no protocol semantics and never crosses the wire.
type ConnContext struct {
	ID    string
	Peer  string
	Start time.Time
}

func newConnContext(peer string) ConnContext {
	return ConnContext{ID: uuid.NewString(), Peer: peer, Start: time.Now()}
}

// Config holds the server's tunables. New starts from defaultConfig's
// values and applies the Option funcs passed to it.
type Config struct {
	Backlog       int
	BufferCap     int
	MaxURLLen     int
	MaxMethodLen  int
	Metrics       *httpmetrics.Collectors
	AddrFormatter httpsock.AddrFormatter
}

func defaultConfig() Config {
	return Config{
		Backlog:       128,
		BufferCap:     4096,
		MaxURLLen:     8192,
		MaxMethodLen:  16,
		AddrFormatter: httpsock.DefaultFormatter,
	}
}

// Option configures a Server at construction.
type Option func(*Config)

func WithBacklog(n int) Option { return func(c *Config) { c.Backlog = n } }

func WithBufferCap(n int) Option { return func(c *Config) { c.BufferCap = n } }

func WithMaxURLLen(n int) Option { return func(c *Config) { c.MaxURLLen = n } }

func WithMaxMethodLen(n int) Option { return func(c *Config) { c.MaxMethodLen = n } }

func WithMetrics(m *httpmetrics.Collectors) Option { return func(c *Config) { c.Metrics = m } }

// WithAddrFormatter overrides how the server listens and formats peer
// addresses -- substitute a test double to drive the server without a
// real socket.
func WithAddrFormatter(f httpsock.AddrFormatter) Option {
	return func(c *Config) { c.AddrFormatter = f }
}

// Server accepts connections on one listener and dispatches each fully
// parsed request to whichever registered route's pattern matches it.
type Server struct {
	cfg      Config
	listener *httpsock.Listener
	routes   []route
	running  atomic.Bool
}

// New parses addrRepr (host:port notation) and starts listening.
// Call Run to enter the accept loop.
func New(addrRepr string, opts ...Option) (*Server, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ln, err := cfg.AddrFormatter.Listen(addrRepr, cfg.Backlog)
	if err != nil {
		return nil, err
	}

	return &Server{cfg: cfg, listener: ln}, nil
}

// Handle registers handler for every request whose path matches pattern.
// Patterns are ranked at match time per internal/path's rules; Handle
// itself imposes no ordering beyond "first registered wins a tie".
func (s *Server) Handle(pattern string, handler Handler) {
	s.routes = append(s.routes, route{pattern: path.NewPattern(pattern), handler: handler})
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string { return s.listener.Addr }

// Run enters the accept loop, blocking until Stop is called or the
// process receives SIGINT/SIGTERM. Per-connection failures and failed
// accepts are logged and the loop continues; Run returns nil once the
// loop stops.
func (s *Server) Run() error {
	s.running.Store(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		s.Stop()
	}()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			httplog.Get().Warn("accept failed", zap.Error(err))
			continue
		}

		if s.cfg.Metrics != nil {
			s.cfg.Metrics.ConnectionsAccepted.Inc()
		}
		s.handleConn(conn)
	}

	return nil
}

// Stop causes Run to return after its current connection finishes and
// closes the listener. Safe to call more than once.
func (s *Server) Stop() {
	if s.running.Swap(false) {
		s.listener.Close()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	cc := newConnContext(s.cfg.AddrFormatter.PeerAddr(conn))

	if s.cfg.Metrics != nil {
		defer s.cfg.Metrics.ObserveLatency(cc.Start)
	}

	r := ioreader.New(conn, s.cfg.BufferCap, cc.ID)
	defer r.Close()

	limits := httpparse.Limits{
		MaxMethodLen: s.cfg.MaxMethodLen,
		MaxURILen:    s.cfg.MaxURLLen,
		MaxLineLen:   s.cfg.MaxURLLen,
	}
	p := httpparse.NewParser(r, limits)

	if err := p.ParseStartLine(); err != nil {
		s.respondParseFailure(conn, cc, "start-line", err)
		return
	}
	if err := p.ParseHeaders(); err != nil {
		s.respondParseFailure(conn, cc, "headers", err)
		return
	}

	req, err := request.FromParser(p, cc.Peer)
	if err != nil {
		s.respondParseFailure(conn, cc, "request-target", err)
		return
	}

	resp := response.NewWriter(conn, cc.Peer)

	idx, caps := path.MatchPatterns(patternsOf(s.routes), req.PathComponents())
	if idx == -1 {
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.RoutesUnmatched.Inc()
		}
		httplog.Get().Info("no route matched",
			zap.String("path", req.URL.Path), zap.String("peer", cc.Peer), zap.String("conn_id", cc.ID))
		_ = resp.Send(httpparse.StatusNotFound, 0)
		return
	}

	req.SetPathCaptures(caps)
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RoutesMatched.WithLabelValues(s.routes[idx].pattern.Raw).Inc()
	}

	s.routes[idx].handler(resp, req)
}

func (s *Server) respondParseFailure(conn net.Conn, cc ConnContext, stage string, err error) {
	if s.cfg.Metrics != nil {
		kind := "failed_parse"
		switch {
		case errors.Is(err, httperr.ErrEOF):
			kind = "eof"
		case errors.Is(err, httperr.ErrURLTooLong):
			kind = "url_too_long"
		case errors.Is(err, httperr.ErrFailedRead):
			kind = "failed_read"
		}
		s.cfg.Metrics.ParseFailures.WithLabelValues(kind).Inc()
	}
	httplog.Get().Warn("failed to parse request",
		zap.String("stage", stage), zap.String("peer", cc.Peer), zap.String("conn_id", cc.ID), zap.Error(err))

	if errors.Is(err, httperr.ErrEOF) {
		// Peer closed before a terminating line ever arrived; there is
		// nothing to frame a response against.
		return
	}

	status := httpparse.StatusBadRequest
	if errors.Is(err, httperr.ErrURLTooLong) {
		status = httpparse.StatusURITooLong
	}
	resp := response.NewWriter(conn, cc.Peer)
	_ = resp.Send(status, 0)
}

func patternsOf(routes []route) []path.Pattern {
	out := make([]path.Pattern, len(routes))
	for i, r := range routes {
		out[i] = r.pattern
	}
	return out
}
