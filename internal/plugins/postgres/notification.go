package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"murmur/internal/core/domain"
)

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// CreateNotification assigns an id when the caller did not.
func (r *NotificationRepo) CreateNotification(ctx context.Context, n *domain.Notification) error {
	if err := uuid.Validate(n.UserID); err != nil {
		return domain.ErrInvalidUserID
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	query := `
        INSERT INTO notifications (id, user_id, title, message, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, query, n.ID, n.UserID, n.Title, n.Message, n.IsRead, n.CreatedAt)
	return err
}

// GetUnreadNotifications returns newest first.
func (r *NotificationRepo) GetUnreadNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	if err := uuid.Validate(userID); err != nil {
		return nil, domain.ErrInvalidUserID
	}
	query := `
        SELECT id, user_id, title, message, is_read, created_at
        FROM notifications
        WHERE user_id = $1 AND is_read = false
        ORDER BY created_at DESC`
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var (
			n     domain.Notification
			title sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if title.Valid {
			n.Title = &title.String
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if err := uuid.Validate(userID); err != nil {
		return 0, domain.ErrInvalidUserID
	}
	query := `UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
