package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"murmur/internal/config"
	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

var _ contracts.TaskWorker = (*TaskWorker)(nil)

// Notifier is the part of the notification service the worker drives.
type Notifier interface {
	Notify(ctx context.Context, userID, message string, title *string) error
}

// TaskWorker promotes due tasks and runs ready ones from the shared queue.
type TaskWorker struct {
	log      *slog.Logger
	queue    contracts.TaskQueue
	notifier Notifier
	cfg      config.WorkerConfig
}

func NewTaskWorker(log *slog.Logger, queue contracts.TaskQueue, notifier Notifier, cfg config.WorkerConfig) *TaskWorker {
	if cfg.PromoteInterval <= 0 {
		cfg.PromoteInterval = time.Second
	}
	return &TaskWorker{log: log, queue: queue, notifier: notifier, cfg: cfg}
}

func (w *TaskWorker) Run(ctx context.Context) error {
	w.log.InfoContext(ctx, "worker - run - started", slog.String("group", w.cfg.Group), slog.String("consumer", w.cfg.Consumer))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.promote(gctx) })
	g.Go(func() error { return w.queue.Consume(gctx, w.cfg.Group, w.cfg.Consumer, w.Process) })
	err := g.Wait()
	w.log.InfoContext(ctx, "worker - run - stopped")
	return err
}

// promote errors are logged and retried on the next tick.
func (w *TaskWorker) promote(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PromoteInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			n, err := w.queue.PromoteDue(ctx, now)
			if err != nil {
				if ctx.Err() == nil {
					w.log.ErrorContext(ctx, "worker - promote - failed", logging.Err(err))
				}
				continue
			}
			if n > 0 {
				w.log.DebugContext(ctx, "worker - promote - moved due tasks", slog.Int("count", n))
			}
		}
	}
}

func (w *TaskWorker) Process(ctx context.Context, task domain.Task) error {
	log := w.log.With(logging.Task(task.ID, task.Name))
	start := time.Now()
	switch task.Name {
	case domain.TaskNotify:
		var p domain.NotifyTask
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			log.WarnContext(ctx, "worker - process - wrong payload", logging.Err(err))
			return fmt.Errorf("worker - decode %s: %w", task.Name, err)
		}
		if err := domain.Validate(p); err != nil {
			log.WarnContext(ctx, "worker - process - invalid payload", logging.Err(err))
			return fmt.Errorf("worker - validate %s: %w", task.Name, err)
		}
		if err := w.notifier.Notify(ctx, p.UserID, p.Message, p.Title); err != nil {
			log.ErrorContext(ctx, "worker - process - notify failed", logging.User(p.UserID), logging.Err(err))
			return err
		}
		log.InfoContext(ctx, "worker - process - notify done", logging.User(p.UserID), logging.Elapsed(start))
		return nil
	default:
		log.WarnContext(ctx, "worker - process - unknown task")
		return fmt.Errorf("%w: %s", domain.ErrUnknownTask, task.Name)
	}
}
