// Package server exposes a pot game session over HTTP and websockets.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/potgame/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Server serves one session
type Server struct {
	session  *session.Session
	logger   zerolog.Logger
	clock    quartz.Clock
	upgrader websocket.Upgrader

	mu       sync.Mutex
	http     *http.Server
	stopped  bool
	watchers int

	// done is closed on shutdown to release websocket watchers
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Server
type Option func(*Server)

// WithClock sets the clock driving websocket keepalives
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates a server for sess
func NewServer(sess *session.Session, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		session: sess,
		logger:  logger.With().Str("component", "server").Logger(),
		clock:   quartz.NewReal(),
		done:    make(chan struct{}),
		upgrader: websocket.Upgrader{
			// Browser views are served from other origins during development
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes served by s
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHello)
	mux.HandleFunc("GET /hello", s.handleHello)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/actions", s.handleAction)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s.logRequests(mux)
}

// Start listens on addr and serves until Shutdown. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. If Shutdown already ran, ln is closed
// and http.ErrServerClosed is returned straight away.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeWatchers)
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = ln.Close()
		return http.ErrServerClosed
	}
	s.http = srv
	s.mu.Unlock()

	s.logger.Info().Str("address", ln.Addr().String()).Msg("Listening")
	return srv.Serve(ln)
}

// Shutdown stops accepting requests and waits for in flight ones.
// Websocket watchers are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		s.closeWatchers()
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) closeWatchers() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Watchers returns the number of connected websocket clients
func (s *Server) Watchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchers
}
