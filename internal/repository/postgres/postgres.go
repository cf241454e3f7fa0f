package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Options controls transaction behaviour.
type Options struct {
	// MaxAttempts bounds how many times a transaction is run when it fails
	// with a serialization failure, a deadlock or a lock timeout.
	MaxAttempts  int
	LockTimeout  time.Duration
	RetryBackoff time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:  3,
		LockTimeout:  2 * time.Second,
		RetryBackoff: 50 * time.Millisecond,
	}
}

type Store struct {
	db   *sql.DB
	opts Options
}

func NewStore(db *sql.DB, opts Options) *Store {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &Store{
		db:   db,
		opts: opts,
	}
}

// WithinTx runs fn in a READ COMMITTED transaction. Lifecycle operations take
// explicit row locks, so this level is enough to make check-then-act atomic.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	var err error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt == s.opts.MaxAttempts {
			break
		}
		logger.Warn("Retrying transaction after transient conflict", "attempt", attempt, "error", err)
		select {
		case <-time.After(time.Duration(attempt) * s.opts.RetryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", s.opts.MaxAttempts, err)
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if s.opts.LockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.opts.LockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// NewRepositories binds every repository to the same executor.
func NewRepositories(db DBTX) repository.Repositories {
	return repository.Repositories{
		Spaces:       NewSpaceRepository(db),
		Users:        NewUserRepository(db),
		Reservations: NewReservationRepository(db),
		Payments:     NewPaymentRepository(db),
		OccupancyLog: NewOccupancyLogRepository(db),
	}
}

func nextSequenceValue(ctx context.Context, db DBTX, sequence string) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, "SELECT nextval($1)", sequence).Scan(&n)
	return n, err
}

var _ repository.Transactor = (*Store)(nil)
