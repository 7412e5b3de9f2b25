// Package rest is the HTTP/JSON transport: a chi router, the bearer-token
// middleware and the user handlers.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	usersBasePath = "/users"
	profilePath   = "/profile"
	loginPath     = "/login"
	healthPath    = "/healthz"

	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
)

// NewRouter wires the routes and their middleware chains.
func NewRouter(h *UserHandler, a *Authenticator, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)

	r.Post(loginPath, MakeHandler(logger, h.HandleLogin))

	r.Route(usersBasePath, func(r chi.Router) {
		r.Post("/", MakeHandler(logger, h.HandleCreateUser))

		r.With(a.Authenticate, a.RequireAdmin).
			Get("/", MakeHandler(logger, h.HandleListUsers))

		r.With(a.Authenticate).
			Get(profilePath, MakeHandler(logger, h.HandleProfile))

		r.With(a.AuthenticateWithLookup, a.RequireSelfOrAdmin).
			Patch("/{"+paramUUID+"}", MakeHandler(logger, h.HandleEditUser))

		r.With(a.Authenticate, a.RequireAdmin).
			Delete("/{"+paramUUID+"}", MakeHandler(logger, h.HandleDeleteUser))
	})

	r.Get(healthPath, handleHealthCheck)

	return r
}

type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          logging.Logger
}

func NewServer(addr string, handler http.Handler, shutdownTimeout time.Duration, logger logging.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
