package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/hongminglow/lab-portal/internal/auth"
	"github.com/hongminglow/lab-portal/internal/config"
	"github.com/hongminglow/lab-portal/internal/http/handlers"
	"github.com/hongminglow/lab-portal/internal/middleware"
	"github.com/hongminglow/lab-portal/internal/storage"
	"github.com/hongminglow/lab-portal/internal/storage/files"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware and routes. It fails when no token manager can be
// built from cfg, so a portal without a signing secret never starts.
func New(cfg config.Config, store storage.Store, uploads *files.Local) (*Server, error) {
	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	mux := http.NewServeMux()
	pinger, _ := store.(handlers.Pinger)
	handlers.NewHealthHandler(time.Now(), pinger).Register(mux)

	authOpts := []handlers.AuthOption{handlers.WithBcryptCost(cfg.BcryptCost)}
	if cfg.LoginRateLimit > 0 {
		authOpts = append(authOpts, handlers.WithLoginLimiter(httprate.LimitByIP(cfg.LoginRateLimit, time.Minute)))
	}
	handlers.NewAuthHandler(store, tokenManager, authOpts...).Register(mux)
	handlers.NewNewsHandler(store, uploads, cfg.UploadMaxBytes).Register(mux)
	handlers.NewPublicationHandler(store).Register(mux)
	handlers.NewEquipmentHandler(store).Register(mux)
	handlers.NewTeamHandler(store).Register(mux)
	handlers.NewUploadHandler(uploads, cfg.UploadMaxBytes).Register(mux)
	mux.Handle("GET "+files.URLPrefix, serveUploads(uploads.Dir()))

	gate := auth.Gate(auth.NewPolicy(cfg.PublicGETPrefixes), tokenManager)
	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(gate(mux)))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}, nil
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

// serveUploads serves stored files as inert content: no sniffing, no scripts.
func serveUploads(dir string) http.Handler {
	fs := http.StripPrefix(files.URLPrefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", "default-src 'none'; sandbox")
		fs.ServeHTTP(w, r)
	})
}
