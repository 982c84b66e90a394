package runtime

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TechXTT/tidbreader/internal/core"
	"github.com/TechXTT/tidbreader/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrAcquireTimeout is returned when no pooled connection frees up within
// PoolConfig.AcquireTimeout.
var ErrAcquireTimeout = errors.New("runtime: timed out waiting for a pooled connection")

const rollbackTimeout = 5 * time.Second

// ConnectionError reports a failure to bring the pool up: the store is
// unreachable or rejected the credentials.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("runtime: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Querier is the read surface available inside a lease.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Opener opens a database handle. Connect is the default.
type Opener func(driver, dsn string) (*sql.DB, error)

// PoolConfig sizes and addresses the pool.
type PoolConfig struct {
	Driver string
	DSN    string
	Size   int
	// MaxOverflow is carried for operators but never raises the lease cap:
	// at most Size connections are leased at once.
	MaxOverflow     int
	AcquireTimeout  time.Duration
	ConnMaxLifetime time.Duration
}

// PoolConfigFrom maps the service config onto pool settings.
func PoolConfigFrom(cfg *config.Config) PoolConfig {
	return PoolConfig{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN(),
		Size:            cfg.PoolSize,
		MaxOverflow:     cfg.MaxOverflow,
		AcquireTimeout:  cfg.AcquireTimeout,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
}

// Option customizes a Pool.
type Option func(*Pool)

// WithOpener replaces the function used to open the database handle.
func WithOpener(o Opener) Option {
	return func(p *Pool) { p.open = o }
}

// WithLogger sets the pool's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Live       bool
	Leased     int64
	PeakLeased int64
	Inits      int64
	DB         sql.DBStats
}

// Pool is a lazily initialized, bounded set of database connections.
// Callers lease one connection per operation through Acquire.
type Pool struct {
	cfg  PoolConfig
	open Opener
	log  zerolog.Logger

	mu sync.Mutex
	db *sql.DB

	leased atomic.Int64
	peak   atomic.Int64
	inits  atomic.Int64
}

// NewPool returns an uninitialized pool. Nothing is dialed until
// Initialize or the first Acquire.
func NewPool(cfg PoolConfig, opts ...Option) *Pool {
	if cfg.Size < 1 {
		cfg.Size = 1
	}
	p := &Pool{
		cfg:  cfg,
		open: Connect,
		log:  log.With().Str("component", "pool").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Initialize brings the pool up. It is a no-op when the pool is already
// live. Failures are returned as *ConnectionError and leave no pool behind.
func (p *Pool) Initialize(ctx context.Context) error {
	_, err := p.handle(ctx)
	return err
}

func (p *Pool) handle(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return p.db, nil
	}

	db, err := p.open(p.cfg.Driver, p.cfg.DSN)
	if err != nil {
		p.log.Error().Err(err).Str("driver", p.cfg.Driver).Msg("failed to open connection pool")
		return nil, &ConnectionError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(p.cfg.Size)
	db.SetMaxIdleConns(p.cfg.Size)
	db.SetConnMaxLifetime(p.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		p.log.Error().Err(err).Str("driver", p.cfg.Driver).Msg("failed to initialize connection pool")
		return nil, &ConnectionError{Op: "ping", Err: err}
	}

	p.db = db
	p.inits.Add(1)
	p.log.Info().
		Str("driver", p.cfg.Driver).
		Int("size", p.cfg.Size).
		Int("max_overflow", p.cfg.MaxOverflow).
		Dur("acquire_timeout", p.cfg.AcquireTimeout).
		Msg("connection pool initialized")
	return db, nil
}

// Acquire leases one connection, runs fn on it in autocommit mode and
// hands the connection back. fn's error is returned as is. When fn fails
// or panics a ROLLBACK is issued before release, and a connection that
// cannot take it is discarded instead of going back to the pool.
//
// When the pool is exhausted Acquire waits up to PoolConfig.AcquireTimeout
// (forever when zero) or until ctx is done.
func (p *Pool) Acquire(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	db, err := p.handle(ctx)
	if err != nil {
		return err
	}

	conn, err := p.lease(ctx, db)
	if err != nil {
		return err
	}
	p.track(1)
	defer p.track(-1)
	p.log.Debug().Msg("connection acquired from pool")

	finished := false
	defer func() {
		// fn panicked
		if !finished {
			p.rollback(ctx, conn)
		}
	}()

	if err := fn(ctx, conn); err != nil {
		finished = true
		p.rollback(ctx, conn)
		return err
	}
	finished = true
	p.release(conn, false)
	return nil
}

func (p *Pool) lease(ctx context.Context, db *sql.DB) (*sql.Conn, error) {
	lctx := ctx
	if p.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}
	conn, err := db.Conn(lctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			p.log.Warn().Dur("timeout", p.cfg.AcquireTimeout).Msg("pool exhausted")
			return nil, fmt.Errorf("%w after %s", ErrAcquireTimeout, p.cfg.AcquireTimeout)
		}
		return nil, fmt.Errorf("runtime: lease connection: %w", err)
	}
	return conn, nil
}

// rollback clears whatever a failed callback left open on conn. It runs
// detached from ctx, which is often the reason fn failed.
func (p *Pool) rollback(ctx context.Context, conn *sql.Conn) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if _, err := conn.ExecContext(rctx, "ROLLBACK"); err != nil {
		p.log.Warn().Err(err).Msg("rollback failed, discarding connection")
		p.release(conn, true)
		return
	}
	p.release(conn, false)
}

// release returns conn to the pool. With discard set, the underlying driver
// connection is closed instead of being reused.
func (p *Pool) release(conn *sql.Conn, discard bool) {
	if discard {
		// Returning ErrBadConn from Raw makes database/sql drop the connection.
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		p.log.Debug().Err(err).Msg("release connection")
		return
	}
	p.log.Debug().Bool("discarded", discard).Msg("connection returned to pool")
}

func (p *Pool) track(delta int64) {
	n := p.leased.Add(delta)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

// Shutdown drops the pool and closes its idle connections. Leases still in
// flight finish on their own; a later Acquire initializes a fresh pool.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	db := p.db
	p.db = nil
	p.mu.Unlock()

	if db == nil {
		return nil
	}
	p.log.Info().Msg("closing database connection pool")
	return db.Close()
}

// Stats reports lease counters and, while live, the database/sql stats.
func (p *Pool) Stats() Stats {
	s := Stats{
		Leased:     p.leased.Load(),
		PeakLeased: p.peak.Load(),
		Inits:      p.inits.Load(),
	}
	p.mu.Lock()
	if p.db != nil {
		s.Live = true
		s.DB = p.db.Stats()
	}
	p.mu.Unlock()
	return s
}

// Dialect returns the placeholder style of the configured driver.
func (p *Pool) Dialect() core.Dialect {
	return DialectFor(p.cfg.Driver)
}
