//go:generate go run go.uber.org/mock/mockgen -source=presence.go -destination=../../../mocks/mock_presence.go -package=mocks
package contracts

import (
	"context"
	"time"

	"murmur/internal/core/domain"
)

// PresenceStore is the shared user -> connection mapping visible to every process.
type PresenceStore interface {
	// Publish overwrites any previous entry for the user.
	Publish(ctx context.Context, userID, connID string, ttl time.Duration) error
	// Lookup returns domain.ErrPresenceNotFound when no entry exists.
	Lookup(ctx context.Context, userID string) (string, error)
	// Refresh extends the TTL only if the entry still points at connID.
	Refresh(ctx context.Context, userID, connID string, ttl time.Duration) (bool, error)
	// Revoke deletes the entry if it points at connID, or unconditionally when connID is empty.
	Revoke(ctx context.Context, userID, connID string) (bool, error)
}

// PresenceDirectory is the best effort view over a PresenceStore used by delivery paths.
type PresenceDirectory interface {
	Publish(ctx context.Context, userID, connID string)
	Lookup(ctx context.Context, userID string) (string, bool)
	Refresh(ctx context.Context, userID, connID string)
	Revoke(ctx context.Context, userID, connID string)
	IsConnected(ctx context.Context, userID string) bool
}

// Dispatcher delivers an envelope to whatever connection a user currently holds.
type Dispatcher interface {
	DeliverToUser(ctx context.Context, userID string, env domain.Envelope) bool
}
