// Package api exposes the relay over a local HTTP interface.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mirrorpool/mirrorpool/internal/core/ports/driving"
	"github.com/mirrorpool/mirrorpool/internal/logger"
)

// Server serves the relay HTTP API.
//
// Routes:
//
//	POST /api/v1/mirror            run one mirror operation
//	POST /api/v1/index/invalidate  discard the destination snapshot
//	GET  /api/v1/health            readiness report
type Server struct {
	mu       sync.Mutex
	addr     string
	relayer  driving.Relayer
	health   driving.HealthChecker
	server   *http.Server
	listener net.Listener
}

// New creates an API server bound to addr.
func New(addr string, relayer driving.Relayer, health driving.HealthChecker) *Server {
	return &Server{
		addr:    addr,
		relayer: relayer,
		health:  health,
	}
}

// Handler returns the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/mirror", s.handleMirror)
	mux.HandleFunc("/api/v1/index/invalidate", s.handleInvalidate)
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	return mux
}

// Start begins serving. If the configured port is 0 the kernel picks one;
// Addr reports the bound address. Serving continues in the background until
// Stop is called.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Uploads can hold a request open for minutes; only reads are bounded.
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("api server: %v", err)
		}
	}()

	logger.Info("api server listening on %s", listener.Addr())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
