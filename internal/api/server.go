package api

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"restogrades/internal/logging"
	"restogrades/internal/model"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

const shutdownTimeout = 5 * time.Second

// Store is the persistence the HTTP layer needs.
type Store interface {
	FindAllRestaurants(ctx context.Context, limit int) ([]model.Restaurant, error)
	FindRestaurant(ctx context.Context, id int64) (model.Restaurant, error)
	CreateRestaurant(ctx context.Context, r model.NewRestaurant) (model.Restaurant, error)
	UpdateRestaurant(ctx context.Context, u model.UpdateRestaurant) error
	DeleteRestaurant(ctx context.Context, id int64) error

	FindGrade(ctx context.Context, id int64) (model.Grade, error)
	CreateGrade(ctx context.Context, g model.NewGrade) (model.Grade, error)
	UpdateGrade(ctx context.Context, u model.UpdateGrade) error
	DeleteGrade(ctx context.Context, id int64) error
}

// Config holds the HTTP server settings.
type Config struct {
	Port int
	// ListLimit caps GET /restaurants.
	ListLimit          int
	CORSAllowedOrigins []string
	// AccessLog receives one Common Log Format line per request when set.
	AccessLog io.Writer
}

type Server struct {
	log     *logging.Logger
	cfg     Config
	store   Store
	metrics *metrics

	mu       sync.Mutex
	srv      *http.Server
	stopOnce sync.Once
	// stopped is closed once Shutdown has drained in-flight requests.
	stopped chan struct{}
}

func NewServer(log *logging.Logger, cfg Config, store Store) *Server {
	return &Server{
		log:     log.Named("api"),
		cfg:     cfg,
		store:   store,
		metrics: newMetrics(),
		stopped: make(chan struct{}),
	}
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.notFound)
	r.Use(s.metrics.recordRoute)

	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	r.HandleFunc("/restaurants", s.listRestaurants).Methods(http.MethodGet)
	r.HandleFunc("/restaurants", s.createRestaurant).Methods(http.MethodPost)
	r.HandleFunc("/restaurants/{id:[0-9]+}", s.getRestaurant).Methods(http.MethodGet)
	r.HandleFunc("/restaurants/{id:[0-9]+}", s.updateRestaurant).Methods(http.MethodPut)
	r.HandleFunc("/restaurants/{id:[0-9]+}", s.deleteRestaurant).Methods(http.MethodDelete)
	r.HandleFunc("/restaurants/{id:[0-9]+}/grades", s.restaurantGrades).Methods(http.MethodGet)

	r.HandleFunc("/grades", s.createGrade).Methods(http.MethodPost)
	r.HandleFunc("/grades/{id:[0-9]+}", s.getGrade).Methods(http.MethodGet)
	r.HandleFunc("/grades/{id:[0-9]+}", s.updateGrade).Methods(http.MethodPut)
	r.HandleFunc("/grades/{id:[0-9]+}", s.deleteGrade).Methods(http.MethodDelete)

	var h http.Handler = r
	h = s.metrics.middleware(h)
	h = requestID(h)
	h = cors.New(corsOptions(s.cfg.CORSAllowedOrigins)).Handler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.log.RecoveryLogger()),
		handlers.PrintRecoveryStack(true),
	)(h)
	if s.cfg.AccessLog != nil {
		h = handlers.LoggingHandler(s.cfg.AccessLog, h)
	}
	return h
}

// Start listens on the configured port and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return errors.Wrapf(err, "failed to listen on port %d", s.cfg.Port)
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is cancelled or Stop is called. It returns only
// after in-flight requests have drained.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-done:
		}
	}()

	s.log.Info("App listening", logging.String("addr", l.Addr().String()))
	if err := srv.Serve(l); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server stopped unexpectedly")
		}
		<-s.stopped
	}
	return nil
}

// Stop closes the listener and blocks until in-flight requests have drained or
// the shutdown timeout has passed. It is a no-op before Serve.
func (s *Server) Stop() {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return
	}

	s.stopOnce.Do(func() {
		defer close(s.stopped)

		s.log.Info("Closing server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.log.Error("failed to stop server cleanly", logging.Error(err))
		}
	})
	<-s.stopped
}
