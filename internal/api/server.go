package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arenacore/server/internal/lobby"
)

// Server is the HTTP API server: REST lobby browsing/creation, the
// Prometheus scrape endpoint, and a liveness probe. The WebSocket upgrade
// itself is handled by internal/transport.Server; this Server only mounts
// it at /ws alongside the REST surface.
type Server struct {
	mgr         *lobby.Manager
	router      *chi.Mux
	httpServer  *http.Server
	rateLimiter *IPRateLimiter
	wsHandler   http.HandlerFunc
}

// NewServer creates a new API server with default production configuration.
//
// No network listener is opened until Start() is called. The rate
// limiter's cleanup goroutine starts here, in NewServer; Stop or Shutdown
// ends it.
//
// For testing HTTP endpoints, use Router() directly with httptest.
func NewServer(mgr *lobby.Manager, wsHandler http.HandlerFunc, corsOrigins []string) *Server {
	s := &Server{
		mgr:       mgr,
		wsHandler: wsHandler,
	}

	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Manager:          mgr,
		WebSocketHandler: wsHandler,
		RateLimiter:      s.rateLimiter,
		CORSOrigins:      corsOrigins,
	})

	return s
}

// Start begins the HTTP server. It blocks until the server stops (normally
// via Shutdown) or fails to bind. Call this method only once.
func (s *Server) Start(addr string) error {
	log.Printf("api server starting on %s", addr)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests within ctx's deadline, then
// stops background workers (see Stop).
func (s *Server) Shutdown(ctx context.Context) error {
	s.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(mgr, wsHandler, nil)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/lobbies")
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers owned by this
// server (currently just the rate limiter's cleanup goroutine).
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
