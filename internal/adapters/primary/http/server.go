package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/denchenko/pa/internal/core/app"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 120 * time.Second
)

// StatusFunc extracts the upstream HTTP status from a remote API error, or zero.
type StatusFunc func(err error) int

// Server represents an HTTP server.
type Server struct {
	server *http.Server
	app    *app.App
	status StatusFunc
	logger logrus.FieldLogger
}

// NewServer creates a new HTTP server.
func NewServer(
	addr string,
	appInstance *app.App,
	gatherer prometheus.Gatherer,
	status StatusFunc,
	logger logrus.FieldLogger,
) *Server {
	r := mux.NewRouter()

	s := &Server{
		server: &http.Server{
			Addr:         addr,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		app:    appInstance,
		status: status,
		logger: logger.WithField("component", "http"),
	}

	r.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts", s.handleAddPost).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id:-?[0-9]+}", s.handlePostDetail).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:-?[0-9]+}", s.handleUpdatePost).Methods(http.MethodPut)
	r.HandleFunc("/posts/{id:-?[0-9]+}", s.handleDeletePost).Methods(http.MethodDelete)
	r.HandleFunc("/posts/{id:-?[0-9]+}/comments", s.handleListComments).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:-?[0-9]+}/comments", s.handleAddComment).Methods(http.MethodPost)
	r.HandleFunc("/posts/{postId:-?[0-9]+}/comments/{id:-?[0-9]+}", s.handleUpdateComment).Methods(http.MethodPut)
	r.HandleFunc("/posts/{postId:-?[0-9]+}/comments/{id:-?[0-9]+}", s.handleDeleteComment).Methods(http.MethodDelete)
	r.HandleFunc("/posts/{postId:-?[0-9]+}/comments/{id:-?[0-9]+}/like", s.handleLikeComment).Methods(http.MethodPost)
	r.HandleFunc("/tags", s.handleTags).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}", s.handleUser).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// wrapped outside the router so unmatched routes are logged too
	s.server.Handler = s.accessLog(r)

	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("starting server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request")
	})
}
