package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"murmur/internal/app/registry"
	"murmur/internal/core/domain"
	"murmur/internal/plugins/memory"
	"murmur/mocks"
)

func TestNotificationService_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist and not push when the user is offline", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockNotificationRepository(ctrl)
		presence := mocks.NewMockPresenceDirectory(ctrl)
		dispatcher := mocks.NewMockDispatcher(ctrl)
		svc := NewNotificationService(slog.Default(), repo, presence, dispatcher, mocks.NewMockConnectionRegistry(ctrl))

		repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, n *domain.Notification) error {
				req.Equal("u1", n.UserID)
				req.Equal("you have a follower", n.Message)
				req.False(n.IsRead)
				return nil
			})
		presence.EXPECT().IsConnected(gomock.Any(), "u1").Return(false)
		dispatcher.EXPECT().DeliverToUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := svc.Notify(ctx, "u1", "you have a follower", nil)

		req.NoError(err)
	})

	t.Run("should push new_notification to a connected user", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockNotificationRepository(ctrl)
		presence := mocks.NewMockPresenceDirectory(ctrl)
		dispatcher := mocks.NewMockDispatcher(ctrl)
		svc := NewNotificationService(slog.Default(), repo, presence, dispatcher, mocks.NewMockConnectionRegistry(ctrl))
		title := "Follow"

		repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, n *domain.Notification) error {
				n.ID = "n1"
				return nil
			})
		presence.EXPECT().IsConnected(gomock.Any(), "u1").Return(true)
		dispatcher.EXPECT().DeliverToUser(gomock.Any(), "u1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, env domain.Envelope) bool {
				msg, ok := env.(domain.NewNotificationMessage)
				req.True(ok)
				req.Equal("n1", msg.Data.ID)
				req.Equal("Follow", *msg.Data.Title)
				return true
			})

		req.NoError(svc.Notify(ctx, "u1", "hello", &title))
	})

	t.Run("should swallow a failed push", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockNotificationRepository(ctrl)
		presence := mocks.NewMockPresenceDirectory(ctrl)
		dispatcher := mocks.NewMockDispatcher(ctrl)
		svc := NewNotificationService(slog.Default(), repo, presence, dispatcher, mocks.NewMockConnectionRegistry(ctrl))

		repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)
		presence.EXPECT().IsConnected(gomock.Any(), "u1").Return(true)
		dispatcher.EXPECT().DeliverToUser(gomock.Any(), "u1", gomock.Any()).Return(false)

		req.NoError(svc.Notify(ctx, "u1", "hello", nil))
	})

	t.Run("should fail without pushing when the write fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockNotificationRepository(ctrl)
		presence := mocks.NewMockPresenceDirectory(ctrl)
		dispatcher := mocks.NewMockDispatcher(ctrl)
		svc := NewNotificationService(slog.Default(), repo, presence, dispatcher, mocks.NewMockConnectionRegistry(ctrl))

		repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
		presence.EXPECT().IsConnected(gomock.Any(), gomock.Any()).Times(0)

		err := svc.Notify(ctx, "u1", "hello", nil)

		req.ErrorIs(err, domain.ErrNotificationNotSaved)
	})

	t.Run("should reject an empty user", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		svc := NewNotificationService(slog.Default(), mocks.NewMockNotificationRepository(ctrl),
			mocks.NewMockPresenceDirectory(ctrl), mocks.NewMockDispatcher(ctrl), mocks.NewMockConnectionRegistry(ctrl))

		req.ErrorIs(svc.Notify(ctx, "", "hello", nil), domain.ErrInvalidUserID)
	})
}

func TestNotificationService_EndToEndPush(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockNotificationRepository(ctrl)
	reg := registry.NewRegistry(slog.Default())
	presence := NewPresenceService(slog.Default(), memory.NewPresenceStore(time.Minute), reg, time.Hour, time.Second)
	svc := NewNotificationService(slog.Default(), repo, presence, NewDispatcherService(slog.Default(), presence, reg), reg)
	ch := &recordChannel{}
	reg.Register("c1", ch)
	presence.Publish(ctx, "u1", "c1")

	repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)

	req.NoError(svc.Notify(ctx, "u1", "ping from bob", nil))
	req.Equal("new_notification", ch.last().Get("type").String())
	req.Equal("ping from bob", ch.last().Get("data.message").String())
}

func TestNotificationService_SendUnread(t *testing.T) {
	ctx := context.Background()

	t.Run("should send the backlog to the given connection", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockNotificationRepository(ctrl)
		reg := registry.NewRegistry(slog.Default())
		ch := &recordChannel{}
		reg.Register("c1", ch)
		svc := NewNotificationService(slog.Default(), repo, mocks.NewMockPresenceDirectory(ctrl), mocks.NewMockDispatcher(ctrl), reg)

		repo.EXPECT().GetUnreadNotifications(gomock.Any(), "u1").Return([]domain.Notification{
			{ID: "n1", UserID: "u1", Message: "a", CreatedAt: time.Now()},
			{ID: "n2", UserID: "u1", Message: "b", CreatedAt: time.Now()},
		}, nil)

		req.NoError(svc.SendUnread(ctx, "u1", "c1"))
		req.Equal("unread_notifications", ch.last().Get("type").String())
		req.Equal(int64(2), ch.last().Get("data.count").Int())
	})

	t.Run("should report a connection that is gone", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockNotificationRepository(ctrl)
		svc := NewNotificationService(slog.Default(), repo, mocks.NewMockPresenceDirectory(ctrl), mocks.NewMockDispatcher(ctrl), registry.NewRegistry(slog.Default()))

		repo.EXPECT().GetUnreadNotifications(gomock.Any(), "u1").Return(nil, nil)

		req.ErrorIs(svc.SendUnread(ctx, "u1", "c1"), domain.ErrConnectionGone)
	})
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockNotificationRepository(ctrl)
	svc := NewNotificationService(slog.Default(), repo, mocks.NewMockPresenceDirectory(ctrl), mocks.NewMockDispatcher(ctrl), mocks.NewMockConnectionRegistry(ctrl))

	repo.EXPECT().MarkAllRead(gomock.Any(), "u1").Return(int64(3), nil)

	n, err := svc.MarkAllRead(context.Background(), "u1")

	req.NoError(err)
	req.Equal(int64(3), n)
}
