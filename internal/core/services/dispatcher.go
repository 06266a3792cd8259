package services

import (
	"context"
	"log/slog"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

var _ contracts.Dispatcher = (*DispatcherService)(nil)

type DispatcherService struct {
	presence contracts.PresenceDirectory
	registry contracts.ConnectionRegistry
	log      *slog.Logger
}

func NewDispatcherService(
	log *slog.Logger,
	presence contracts.PresenceDirectory,
	registry contracts.ConnectionRegistry,
) *DispatcherService {
	return &DispatcherService{presence: presence, registry: registry, log: log}
}

// DeliverToUser is best effort: offline users, stale entries and failed writes all yield false.
func (d *DispatcherService) DeliverToUser(ctx context.Context, userID string, env domain.Envelope) bool {
	connID, ok := d.presence.Lookup(ctx, userID)
	if !ok {
		return false
	}
	data, err := domain.Encode(env)
	if err != nil {
		d.log.ErrorContext(ctx, "dispatcher - deliver - encode failed", logging.User(userID), logging.Err(err))
		return false
	}
	if !d.registry.Send(ctx, connID, data) {
		d.log.DebugContext(ctx, "dispatcher - deliver - not delivered", logging.User(userID), logging.Conn(connID))
		return false
	}
	return true
}
