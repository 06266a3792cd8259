package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

var notificationTracer = otel.Tracer("notification-service")

// NotificationService persists notifications and pushes them to connected users.
type NotificationService struct {
	repo       domain.NotificationRepository
	presence   contracts.PresenceDirectory
	dispatcher contracts.Dispatcher
	registry   contracts.ConnectionRegistry
	log        *slog.Logger
}

func NewNotificationService(
	log *slog.Logger,
	repo domain.NotificationRepository,
	presence contracts.PresenceDirectory,
	dispatcher contracts.Dispatcher,
	registry contracts.ConnectionRegistry,
) *NotificationService {
	return &NotificationService{
		repo:       repo,
		presence:   presence,
		dispatcher: dispatcher,
		registry:   registry,
		log:        log,
	}
}

// Notify only fails when the durable write fails. The live push is best effort.
func (s *NotificationService) Notify(ctx context.Context, userID, message string, title *string) error {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.Notify", trace.WithAttributes(
		attribute.String("user_id", userID),
	))
	defer span.End()

	if userID == "" {
		return domain.ErrInvalidUserID
	}
	n := domain.NewNotification(userID, message, title)
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.log.ErrorContext(ctx, "notifications - notify - persist failed", logging.User(userID), logging.Err(err))
		return fmt.Errorf("%w: %w", domain.ErrNotificationNotSaved, err)
	}
	if !s.presence.IsConnected(ctx, userID) {
		s.log.DebugContext(ctx, "notifications - notify - user offline", logging.User(userID))
		return nil
	}
	pushed := s.dispatcher.DeliverToUser(ctx, userID, domain.NewNewNotification(*n))
	span.SetAttributes(attribute.Bool("pushed", pushed))
	s.log.InfoContext(ctx, "notifications - notify - ok", logging.User(userID), slog.Bool("pushed", pushed))
	return nil
}

// SendUnread pushes the unread backlog to one freshly opened connection.
func (s *NotificationService) SendUnread(ctx context.Context, userID, connID string) error {
	ns, err := s.repo.GetUnreadNotifications(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "notifications - send unread - load failed", logging.User(userID), logging.Err(err))
		return err
	}
	data, err := domain.Encode(domain.NewUnreadNotifications(ns))
	if err != nil {
		return err
	}
	if !s.registry.Send(ctx, connID, data) {
		return domain.ErrConnectionGone
	}
	return nil
}

func (s *NotificationService) Unread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.GetUnreadNotifications(ctx, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "notifications - mark all read - failed", logging.User(userID), logging.Err(err))
		return 0, err
	}
	return n, nil
}
