package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driving"
)

// StatusReporter exposes gateway provider state for the health surface.
type StatusReporter interface {
	Status() []domain.ProviderStatus
}

// IndexInfo exposes vector store state for the health surface.
type IndexInfo interface {
	Size() int
	DocumentHash() string
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	runService driving.RunService

	// Infrastructure
	auth           driven.AuthAdapter
	apiToken       string
	allowedOrigins []string
	gateway        StatusReporter
	index          IndexInfo
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// APIToken is the static bearer credential; empty disables auth
	APIToken string

	// AllowedOrigins lists origins granted CORS access
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	runService driving.RunService,
	auth driven.AuthAdapter,
	gateway StatusReporter,
	index IndexInfo,
) *Server {
	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		runService:     runService,
		auth:           auth,
		apiToken:       cfg.APIToken,
		allowedOrigins: cfg.AllowedOrigins,
		gateway:        gateway,
		index:          index,
	}

	// CORS sits outside the mux so preflight OPTIONS requests never 405
	cors := NewCORSMiddleware(s.allowedOrigins)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: cors.Handler(s.router),
		// Generation against a cold document can take minutes
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.auth, s.apiToken)
	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()
	wrap := func(h http.Handler) http.Handler {
		return recovery.Handler(logging.Handler(h))
	}

	// Health endpoints (no auth)
	s.router.Handle("GET /health", wrap(http.HandlerFunc(s.handleHealth)))
	s.router.Handle("GET /ready", wrap(http.HandlerFunc(s.handleReady)))
	s.router.Handle("GET /version", wrap(http.HandlerFunc(s.handleVersion)))

	// Token exchange (public; the static credential is the proof)
	s.router.Handle("POST /api/v1/auth/token", wrap(http.HandlerFunc(s.handleToken)))

	// Run endpoint (authenticated)
	s.router.Handle("POST /api/v1/run",
		wrap(authMiddleware.Authenticate(http.HandlerFunc(s.handleRun))))

	// Provider status (authenticated)
	s.router.Handle("GET /api/v1/providers",
		wrap(authMiddleware.Authenticate(http.HandlerFunc(s.handleProviders))))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the full middleware-wrapped handler. Test hook.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
