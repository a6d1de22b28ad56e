package repository

import (
	"context"
	"database/sql"
)

// txKey is the context key under which an active transaction travels.
type txKey struct{}

// Runner executes functions inside a database transaction.  The
// transaction is injected into the context passed to fn, so every
// repository call made with that context participates in it.  When fn
// returns an error the transaction is rolled back and the error is
// returned unchanged; otherwise the transaction is committed.
type Runner struct {
	db *sql.DB
}

// NewRunner returns a Runner bound to the provided database.
func NewRunner(db *sql.DB) *Runner { return &Runner{db: db} }

// WithTx runs fn inside a transaction.  Nested calls reuse the already
// active transaction rather than opening a second one.
func (r *Runner) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// querier is the subset of database operations shared by *sql.DB and
// *sql.Tx.  Repositories resolve one per call via q().
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction carried by ctx when present, otherwise the
// plain database handle.
func q(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
