package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter mounts the lottery API, health and index routes
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", h.Index)
	r.Get("/health", h.Health)

	r.Route("/api/lottery", func(r chi.Router) {
		r.Post("/ticket", h.CreateTicket)
		r.Get("/ticket/{ticketId}", h.GetTicket)
		r.Get("/ticket/{ticketId}/status", h.GetTicketStatus)
		r.Get("/tickets/email/{email}", h.ListTicketsByEmail)
		r.Post("/webhook", h.Webhook)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not found")
	})

	return r
}

// HTTPServer runs the router until shut down
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer creates a server listening on port
func NewHTTPServer(port string, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              net.JoinHostPort("", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      45 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start serves in the background; serve errors are sent on the returned channel
func (s *HTTPServer) Start() (<-chan error, error) {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", listener.Addr().String()).Info("HTTP server listening")
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh, nil
}

// Shutdown stops accepting connections and waits for active requests
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
