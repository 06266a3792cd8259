package services

import (
	"context"
	"database/sql"
	"fmt"

	"murmur/internal/core/contracts"
)

var _ contracts.Transactor = (*TxManager)(nil)

type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTx joins an outer transaction when ctx already carries one.
func (tm *TxManager) WithTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	if _, ok := contracts.TxFromContext(ctx); ok {
		return fn(ctx)
	}
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("tx - begin: %w", err)
	}
	if err := fn(contracts.ContextWithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx - commit: %w", err)
	}
	return nil
}
