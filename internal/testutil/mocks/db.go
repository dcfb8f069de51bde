package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is a DBPort stub for service tests. Transactions are simulated by
// invoking the callback with a nil pgx.Tx; the repository mocks ignore the
// executor argument entirely.
type DB struct {
	// BeginErr makes WithTransaction fail before invoking the callback
	BeginErr error

	// TxCount counts started transactions
	TxCount int
}

func (db *DB) GetDB() *pgxpool.Pool {
	return nil
}

func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if db.BeginErr != nil {
		return db.BeginErr
	}
	db.TxCount++
	return fn(ctx, nil)
}

func (db *DB) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if db.BeginErr != nil {
		return db.BeginErr
	}
	db.TxCount++
	return fn(ctx, nil)
}
