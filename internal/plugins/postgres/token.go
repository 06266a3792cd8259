package postgres

import (
	"context"
	"database/sql"

	"murmur/internal/core/domain"
)

var _ domain.TokenRepository = (*TokenRepo)(nil)

type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

func (r *TokenRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	var revoked bool
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blacklisted_tokens WHERE token = $1)`, token,
	).Scan(&revoked)
	return revoked, err
}
