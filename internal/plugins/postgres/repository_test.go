package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRoomRepo_GetRoom(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.NewString()
	hostID := uuid.NewString()

	t.Run("should load a room", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM rooms WHERE id = $1`)).
			WithArgs(roomID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "is_live", "host_id", "created_at"}).
				AddRow(roomID, "Friday jam", true, hostID, created))

		room, err := NewRoomRepository(db).GetRoom(ctx, roomID)

		req.NoError(err)
		req.Equal(roomID, room.ID)
		req.True(room.IsLive)
		req.Equal(hostID, room.HostID)
		req.Equal(created, room.CreatedAt)
		req.NoError(mock.ExpectationsWereMet())
	})

	t.Run("should map no rows to not found", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM rooms WHERE id = $1`)).
			WithArgs(roomID).
			WillReturnError(sql.ErrNoRows)

		_, err := NewRoomRepository(db).GetRoom(ctx, roomID)

		req.ErrorIs(err, domain.ErrRoomNotFound)
	})

	t.Run("should not query for a malformed id", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)

		_, err := NewRoomRepository(db).GetRoom(ctx, "not-a-uuid")

		req.ErrorIs(err, domain.ErrRoomNotFound)
		req.NoError(mock.ExpectationsWereMet())
	})
}

func TestRoomRepo_DeleteRoomInTx(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.NewString()

	t.Run("should delete participants and room in the carried transaction", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM participants WHERE room_id = $1`)).
			WithArgs(roomID).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM rooms WHERE id = $1`)).
			WithArgs(roomID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Begin()
		req.NoError(err)
		err = NewRoomRepository(db).DeleteRoom(contracts.ContextWithTx(ctx, tx), roomID)
		req.NoError(err)
		req.NoError(tx.Commit())
		req.NoError(mock.ExpectationsWereMet())
	})

	t.Run("should report a room that was already gone", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM participants`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM rooms`)).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewRoomRepository(db).DeleteRoom(ctx, roomID)

		req.ErrorIs(err, domain.ErrRoomNotFound)
	})
}

func TestUserRepo_GetUserProfile(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db, mock := newMock(t)
	userID := uuid.NewString()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, "fullName", email FROM users WHERE id = $1`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "fullName", "email"}).
			AddRow(userID, "alice", "Alice A", "a@murmur.io"))

	p, err := NewUserRepository(db).GetUserProfile(ctx, userID)

	req.NoError(err)
	req.Equal(domain.UserProfile{ID: userID, Username: "alice", FullName: "Alice A", Email: "a@murmur.io"}, *p)

	_, err = NewUserRepository(db).GetUserProfile(ctx, "nope")
	req.ErrorIs(err, domain.ErrUserNotFound)
	req.NoError(mock.ExpectationsWereMet())
}

func TestNotificationRepo(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	t.Run("should insert with a generated id", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		n := domain.NewNotification(userID, "hello", nil)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notifications`)).
			WithArgs(sqlmock.AnyArg(), userID, nil, "hello", false, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewNotificationRepository(db).CreateNotification(ctx, n)

		req.NoError(err)
		req.NoError(uuid.Validate(n.ID))
		req.NoError(mock.ExpectationsWereMet())
	})

	t.Run("should list unread with nullable titles", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND is_read = false`)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "message", "is_read", "created_at"}).
				AddRow("n2", userID, "Follow", "bob followed you", false, now).
				AddRow("n1", userID, nil, "welcome", false, now.Add(-time.Hour)))

		ns, err := NewNotificationRepository(db).GetUnreadNotifications(ctx, userID)

		req.NoError(err)
		req.Len(ns, 2)
		req.Equal("Follow", *ns[0].Title)
		req.Nil(ns[1].Title)
		req.NoError(mock.ExpectationsWereMet())
	})

	t.Run("should return an empty list when nothing is unread", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM notifications`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "message", "is_read", "created_at"}))

		ns, err := NewNotificationRepository(db).GetUnreadNotifications(ctx, userID)

		req.NoError(err)
		req.NotNil(ns)
		req.Empty(ns)
	})

	t.Run("should count rows marked read", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE notifications SET is_read = true`)).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 4))

		n, err := NewNotificationRepository(db).MarkAllRead(ctx, userID)

		req.NoError(err)
		req.Equal(int64(4), n)
	})
}

func TestTokenRepo_IsRevoked(t *testing.T) {
	req := require.New(t)
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM blacklisted_tokens WHERE token = $1`)).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM blacklisted_tokens`)).
		WithArgs("broken").
		WillReturnError(errors.New("conn reset"))

	revoked, err := NewTokenRepository(db).IsRevoked(context.Background(), "tok")
	req.NoError(err)
	req.True(revoked)

	_, err = NewTokenRepository(db).IsRevoked(context.Background(), "broken")
	req.Error(err)
}
