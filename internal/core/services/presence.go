package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

var presenceTracer = otel.Tracer("presence-service")

var _ contracts.PresenceDirectory = (*PresenceService)(nil)

// PresenceService never fails its callers: store errors are logged and read as absent.
type PresenceService struct {
	store    contracts.PresenceStore
	registry contracts.ConnectionRegistry
	ttl      time.Duration
	timeout  time.Duration
	log      *slog.Logger
}

func NewPresenceService(
	log *slog.Logger,
	store contracts.PresenceStore,
	registry contracts.ConnectionRegistry,
	ttl, timeout time.Duration,
) *PresenceService {
	return &PresenceService{
		store:    store,
		registry: registry,
		ttl:      ttl,
		timeout:  timeout,
		log:      log,
	}
}

func (p *PresenceService) Publish(ctx context.Context, userID, connID string) {
	ctx, span := presenceTracer.Start(ctx, "PresenceService.Publish", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("connection_id", connID),
	))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.store.Publish(ctx, userID, connID, p.ttl); err != nil {
		span.RecordError(err)
		p.log.WarnContext(ctx, "presence - publish - failed", logging.User(userID), logging.Conn(connID), logging.Err(err))
	}
}

func (p *PresenceService) Lookup(ctx context.Context, userID string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	connID, err := p.store.Lookup(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrPresenceNotFound) {
			p.log.WarnContext(ctx, "presence - lookup - failed", logging.User(userID), logging.Err(err))
		}
		return "", false
	}
	return connID, true
}

// Refresh is the heartbeat path; a superseded connection does not extend someone else's entry.
func (p *PresenceService) Refresh(ctx context.Context, userID, connID string) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	ok, err := p.store.Refresh(ctx, userID, connID, p.ttl)
	if err != nil {
		p.log.WarnContext(ctx, "presence - refresh - failed", logging.User(userID), logging.Conn(connID), logging.Err(err))
		return
	}
	if !ok {
		p.log.DebugContext(ctx, "presence - refresh - superseded", logging.User(userID), logging.Conn(connID))
	}
}

func (p *PresenceService) Revoke(ctx context.Context, userID, connID string) {
	ctx, span := presenceTracer.Start(ctx, "PresenceService.Revoke", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("connection_id", connID),
	))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if _, err := p.store.Revoke(ctx, userID, connID); err != nil {
		span.RecordError(err)
		p.log.WarnContext(ctx, "presence - revoke - failed", logging.User(userID), logging.Conn(connID), logging.Err(err))
	}
}

// IsConnected requires both a presence entry and a live local registration.
func (p *PresenceService) IsConnected(ctx context.Context, userID string) bool {
	connID, ok := p.Lookup(ctx, userID)
	return ok && p.registry.Contains(connID)
}
