// Package api serves the HTTP surface: a health route and the user lookup.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/TechXTT/tidbreader/internal/logger"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Lifecycle is the part of the connection pool the server drives on
// startup and shutdown.
type Lifecycle interface {
	Initialize(ctx context.Context) error
	Shutdown() error
}

// Options configures the listener.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Server struct {
	opts  Options
	users UserService
	pool  Lifecycle
	log   zerolog.Logger
}

func NewServer(opts Options, users UserService, pool Lifecycle) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		opts:  opts,
		users: users,
		pool:  pool,
		log:   logger.Component("api"),
	}
}

// Handler returns the routed handler wrapped in the request-ID, access-log
// and recovery middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", bindInt64("id", s.handleGetUser)).Methods(http.MethodGet)

	return RequestID(Logging(Recover(r)))
}

// Run initializes the pool, listens on Options.Addr and serves until ctx
// is cancelled. A pool that cannot be initialized aborts startup.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Msg("starting TiDB Reader Service")
	if err := s.pool.Initialize(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to start application")
		return err
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		s.shutdownPool()
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("application startup completed")

	select {
	case err := <-errCh:
		s.shutdownPool()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down TiDB Reader Service")
	sctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(sctx)
	if err != nil {
		s.log.Error().Err(err).Msg("server shutdown error")
	}
	s.shutdownPool()
	s.log.Info().Msg("application shutdown completed")
	return err
}

func (s *Server) shutdownPool() {
	if err := s.pool.Shutdown(); err != nil {
		s.log.Warn().Err(err).Msg("closing connection pool")
	}
}
