//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=../../../mocks/mock_repositories.go -package=mocks
package domain

import "context"

// UserRepository resolves public profiles of authenticated users.
type UserRepository interface {
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// RoomRepository reads and deletes persisted rooms.
type RoomRepository interface {
	GetRoom(ctx context.Context, roomID string) (*Room, error)
	DeleteRoom(ctx context.Context, roomID string) error
}

// NotificationRepository is the durable side of the notification bridge.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	GetUnreadNotifications(ctx context.Context, userID string) ([]Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// TokenRepository answers whether a token was revoked (logout, refresh rotation).
type TokenRepository interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}
