package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"murmur/internal/core/domain"
)

var _ domain.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if err := uuid.Validate(userID); err != nil {
		return nil, domain.ErrUserNotFound
	}
	query := `SELECT id, username, "fullName", email FROM users WHERE id = $1`
	var p domain.UserProfile
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.Username, &p.FullName, &p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &p, nil
}
