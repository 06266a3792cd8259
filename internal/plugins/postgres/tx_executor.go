package postgres

import (
	"context"
	"database/sql"

	"murmur/internal/core/contracts"
)

type execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// GetExecutor returns the transaction carried by ctx, or the pool.
func GetExecutor(ctx context.Context, db *sql.DB) execer {
	if tx, ok := contracts.TxFromContext(ctx); ok {
		return tx
	}
	return db
}
