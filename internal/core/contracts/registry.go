//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=../../../mocks/mock_registry.go -package=mocks
package contracts

import "context"

// Channel is the writable end of one live socket.
type Channel interface {
	// Send enqueues a frame; it must not block on a slow peer.
	Send(ctx context.Context, data []byte) error
	// Close flushes queued frames and then closes the socket with code.
	Close(code int, reason string)
}

// ConnectionRegistry maps connection ids of this process to their channels.
type ConnectionRegistry interface {
	Register(connID string, ch Channel)
	// Unregister is a no-op for unknown ids.
	Unregister(connID string)
	// Send reports whether the frame was accepted. A failed write drops the id.
	Send(ctx context.Context, connID string, data []byte) bool
	Contains(connID string) bool
	Count() int
}
