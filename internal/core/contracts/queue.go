//go:generate go run go.uber.org/mock/mockgen -source=queue.go -destination=../../../mocks/mock_queue.go -package=mocks
package contracts

import (
	"context"
	"time"

	"murmur/internal/core/domain"
)

// Scheduler defers a named task; a zero delay makes it ready immediately.
type Scheduler interface {
	Schedule(ctx context.Context, name string, payload []byte, delay time.Duration) (string, error)
}

type TaskQueue interface {
	Scheduler
	// PromoteDue moves every delayed task due at or before now onto the ready stream.
	PromoteDue(ctx context.Context, now time.Time) (int, error)
	// Consume blocks reading ready tasks for the consumer group until ctx is done.
	// A task is acknowledged and removed once handler returns.
	Consume(ctx context.Context, group, consumer string, handler func(ctx context.Context, task domain.Task) error) error
}
