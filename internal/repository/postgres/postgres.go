// Package postgres wraps the pgx pool with the atomic-scope primitives the
// settlement engine runs on: serializable multi-statement transactions,
// typed transient-conflict errors and bounded retry.
package postgres

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/beifitycom/backend/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	// every atomic scope is bounded by a wall-clock timeout; exceeding it
	// aborts the scope with no partial effect
	txTimeout = 30 * time.Second

	// transient conflict retry budget
	conflictAttempts = 5
	conflictBackoff  = 100 * time.Millisecond

	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
	pgErrUniqueViolation      = "23505"
)

// DB is the database handle shared by all repositories.
type DB struct {
	pool *pgxpool.Pool
	dsn  string
}

// New connects to the database at dsn.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{pool: pool, dsn: dsn}, nil
}

// Close closes the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Migrate applies the embedded schema migrations.
func (db *DB) Migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, db.dsn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

type txKey struct{}

// querier is the subset of pgx shared by the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// q returns the transaction bound to ctx if WithinTx is active, otherwise
// the pool itself.
func (db *DB) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.pool
}

// Exec runs sql on the current scope.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return db.q(ctx).Exec(ctx, sql, args...)
}

// Query runs sql on the current scope.
func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return db.q(ctx).Query(ctx, sql, args...)
}

// QueryRow runs sql on the current scope.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.q(ctx).QueryRow(ctx, sql, args...)
}

// ErrorCode extracts the SQLSTATE code from a pgx error.
func (db *DB) ErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
func (db *DB) IsUniqueViolation(err error) bool {
	return db.ErrorCode(err) == pgErrUniqueViolation
}

// WithinTx runs fn inside one serializable transaction. Repository calls
// made with the ctx passed to fn join the transaction. A serialization
// failure or deadlock comes back as *models.ConflictError so callers can
// branch on the type instead of sniffing SQL state codes.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		// already inside a scope; join it
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return wrapConflict(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return wrapConflict(err)
	}
	return wrapConflict(tx.Commit(ctx))
}

// RunAtomic runs fn in a serializable transaction, retrying the whole scope
// with exponential backoff when the store aborts it with a transient
// conflict. Any other error is surfaced immediately.
func (db *DB) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < conflictAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(conflictBackoff << (attempt - 1)):
			}
		}
		err = db.WithinTx(ctx, fn)
		if err == nil || !models.IsConflict(err) {
			return err
		}
	}
	return err
}

func wrapConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected:
			return &models.ConflictError{Err: err}
		}
	}
	return err
}
