package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"murmur/internal/core/domain"
)

var _ domain.RoomRepository = (*RoomRepo)(nil)

type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// GetRoom treats a malformed id like an unknown one.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	if err := uuid.Validate(roomID); err != nil {
		return nil, domain.ErrRoomNotFound
	}
	query := `SELECT id, title, is_live, host_id, created_at FROM rooms WHERE id = $1`
	var room domain.Room
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, roomID).Scan(
		&room.ID, &room.Title, &room.IsLive, &room.HostID, &room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// DeleteRoom removes persisted participation rows and then the room. Run it inside
// a transaction so both go or neither does.
func (r *RoomRepo) DeleteRoom(ctx context.Context, roomID string) error {
	if err := uuid.Validate(roomID); err != nil {
		return domain.ErrRoomNotFound
	}
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, `DELETE FROM participants WHERE room_id = $1`, roomID); err != nil {
		return err
	}
	result, err := exec.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}
