package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// ReadinessCheck is one dependency probed by GET /ready
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Services bundles the driving ports the API exposes
type Services struct {
	Documents driving.DocumentService
	Retrieval driving.RetrievalService
	DriveAuth driving.DriveAuthService
	DriveSync driving.DriveSyncService
	Verifier  driven.TokenVerifier
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	maxUpload  int64

	documents driving.DocumentService
	retrieval driving.RetrievalService
	driveAuth driving.DriveAuthService
	driveSync driving.DriveSyncService
	verifier  driven.TokenVerifier

	checks []ReadinessCheck
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	CORSOrigins    []string
	MaxUploadBytes int64
	WriteTimeout   time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		CORSOrigins:    []string{"*"},
		MaxUploadBytes: 25 << 20,
		WriteTimeout:   2 * time.Minute,
	}
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, svc Services, checks ...ReadinessCheck) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	s := &Server{
		router:    http.NewServeMux(),
		version:   cfg.Version,
		maxUpload: cfg.MaxUploadBytes,
		documents: svc.Documents,
		retrieval: svc.Retrieval,
		driveAuth: svc.DriveAuth,
		driveSync: svc.DriveSync,
		verifier:  svc.Verifier,
		checks:    checks,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.wrap(s.router, cfg.CORSOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.WriteTimeout, // answers wait on the language model
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// wrap applies the middleware chain: recovery, logging, CORS
func (s *Server) wrap(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h = cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           86400,
	})(h)
	h = NewLoggingMiddleware().Handler(h)
	return NewRecoveryMiddleware().Handler(h)
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.verifier)
	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwagger)

	// Document endpoints
	s.router.Handle("POST /api/v1/documents", authed(s.handleUpload))
	s.router.Handle("POST /api/v1/documents/external", authed(s.handleIngestExternal))
	s.router.Handle("GET /api/v1/documents", authed(s.handleListDocuments))
	s.router.Handle("GET /api/v1/documents/{id}/content", authed(s.handleDocumentContent))

	// Search
	s.router.Handle("POST /api/v1/search", authed(s.handleSearch))

	// Drive connection and sync
	s.router.Handle("GET /api/v1/drive/connect", authed(s.handleDriveConnect))
	s.router.Handle("POST /api/v1/drive/claim", authed(s.handleDriveClaim))
	s.router.Handle("GET /api/v1/drive/status", authed(s.handleDriveStatus))
	s.router.Handle("POST /api/v1/drive/sync", authed(s.handleTriggerSync))
	s.router.Handle("GET /api/v1/drive/sync", authed(s.handleGetSync))
	// Callback is public - the provider redirects the browser here
	s.router.HandleFunc("GET /api/v1/drive/callback", s.handleDriveCallback)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
