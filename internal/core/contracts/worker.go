package contracts

import (
	"context"

	"murmur/internal/core/domain"
)

type TaskWorker interface {
	// Run promotes delayed tasks and consumes ready ones until ctx is done.
	Run(ctx context.Context) error
	// Process executes a single task.
	Process(ctx context.Context, task domain.Task) error
}
