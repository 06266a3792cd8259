package worker_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"murmur/internal/app/worker"
	"murmur/internal/config"
	"murmur/internal/core/domain"
	"murmur/mocks"
)

type notifyCall struct {
	userID, message string
	title           *string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
	seen  chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{seen: make(chan struct{}, 8)}
}

func (f *fakeNotifier) Notify(_ context.Context, userID, message string, title *string) error {
	f.mu.Lock()
	f.calls = append(f.calls, notifyCall{userID: userID, message: message, title: title})
	f.mu.Unlock()
	f.seen <- struct{}{}
	return f.err
}

var workerCfg = config.WorkerConfig{Group: "g", Consumer: "c", PromoteInterval: 10 * time.Millisecond}

func TestTaskWorker_Process(t *testing.T) {
	t.Run("should notify for a notify task", func(t *testing.T) {
		req := require.New(t)
		n := newFakeNotifier()
		w := worker.NewTaskWorker(slog.Default(), nil, n, workerCfg)

		err := w.Process(context.Background(), domain.Task{
			ID:      "t1",
			Name:    domain.TaskNotify,
			Payload: []byte(`{"user_id":"u1","message":"hello","title":"Hi"}`),
		})

		req.NoError(err)
		req.Len(n.calls, 1)
		req.Equal("u1", n.calls[0].userID)
		req.Equal("hello", n.calls[0].message)
		req.NotNil(n.calls[0].title)
		req.Equal("Hi", *n.calls[0].title)
	})

	t.Run("should reject a payload missing the message", func(t *testing.T) {
		req := require.New(t)
		n := newFakeNotifier()
		w := worker.NewTaskWorker(slog.Default(), nil, n, workerCfg)

		err := w.Process(context.Background(), domain.Task{Name: domain.TaskNotify, Payload: []byte(`{"user_id":"u1"}`)})

		req.Error(err)
		req.Empty(n.calls)
	})

	t.Run("should reject an unknown task", func(t *testing.T) {
		req := require.New(t)
		w := worker.NewTaskWorker(slog.Default(), nil, newFakeNotifier(), workerCfg)

		err := w.Process(context.Background(), domain.Task{Name: "send_email", Payload: []byte(`{}`)})

		req.ErrorIs(err, domain.ErrUnknownTask)
	})

	t.Run("should surface a notify failure", func(t *testing.T) {
		req := require.New(t)
		n := newFakeNotifier()
		n.err = domain.ErrNotificationNotSaved
		w := worker.NewTaskWorker(slog.Default(), nil, n, workerCfg)

		err := w.Process(context.Background(), domain.Task{Name: domain.TaskNotify, Payload: []byte(`{"user_id":"u1","message":"m"}`)})

		req.ErrorIs(err, domain.ErrNotificationNotSaved)
	})
}

func TestTaskWorker_Run(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	queue := mocks.NewMockTaskQueue(ctrl)
	n := newFakeNotifier()
	w := worker.NewTaskWorker(slog.Default(), queue, n, workerCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Given a queue that promotes on every tick and hands over one ready task
	promoted := make(chan struct{}, 1)
	queue.EXPECT().PromoteDue(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, time.Time) (int, error) {
		select {
		case promoted <- struct{}{}:
		default:
		}
		return 0, errors.New("redis down")
	}).MinTimes(1)
	queue.EXPECT().Consume(gomock.Any(), "g", "c", gomock.Any()).DoAndReturn(
		func(ctx context.Context, _, _ string, handler func(context.Context, domain.Task) error) error {
			_ = handler(ctx, domain.Task{ID: "t1", Name: domain.TaskNotify, Payload: []byte(`{"user_id":"u1","message":"m"}`)})
			<-ctx.Done()
			return nil
		})

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Then the task is processed and promotion keeps ticking despite errors
	select {
	case <-n.seen:
	case <-time.After(2 * time.Second):
		req.FailNow("task was not processed")
	}
	select {
	case <-promoted:
	case <-time.After(2 * time.Second):
		req.FailNow("promotion never ran")
	}

	// When the context is cancelled Run returns cleanly
	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.FailNow("worker did not stop")
	}
}
