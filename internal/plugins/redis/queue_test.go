package redis

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"murmur/internal/core/domain"
)

func TestRedisTaskQueue_ScheduleAndPromote(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	mr, rdb := newTestClient(t)
	q := NewRedisTaskQueue(rdb, slog.Default(), 50*time.Millisecond)

	// Given one immediate and one delayed task
	_, err := q.Schedule(ctx, domain.TaskNotify, []byte(`{"user_id":"u1","message":"now"}`), 0)
	req.NoError(err)
	id, err := q.Schedule(ctx, domain.TaskNotify, []byte(`{"user_id":"u1","message":"later"}`), time.Minute)
	req.NoError(err)
	req.NotEmpty(id)

	// Then only the immediate one is ready
	n, err := rdb.XLen(ctx, readyKey).Result()
	req.NoError(err)
	req.Equal(int64(1), n)
	members, err := mr.ZMembers(delayedKey)
	req.NoError(err)
	req.Len(members, 1)

	// When promoting before it is due nothing moves
	promoted, err := q.PromoteDue(ctx, time.Now())
	req.NoError(err)
	req.Equal(0, promoted)

	// When promoting after it is due it moves exactly once
	promoted, err = q.PromoteDue(ctx, time.Now().Add(2*time.Minute))
	req.NoError(err)
	req.Equal(1, promoted)
	promoted, err = q.PromoteDue(ctx, time.Now().Add(2*time.Minute))
	req.NoError(err)
	req.Equal(0, promoted)

	n, err = rdb.XLen(ctx, readyKey).Result()
	req.NoError(err)
	req.Equal(int64(2), n)
}

func TestRedisTaskQueue_Consume(t *testing.T) {
	req := require.New(t)
	_, rdb := newTestClient(t)
	q := NewRedisTaskQueue(rdb, slog.Default(), 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := q.Schedule(ctx, "broken", []byte(`{}`), 0)
	req.NoError(err)
	_, err = q.Schedule(ctx, domain.TaskNotify, []byte(`{"user_id":"u1","message":"hi"}`), 0)
	req.NoError(err)

	got := make(chan domain.Task, 4)
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(ctx, "workers", "w1", func(_ context.Context, task domain.Task) error {
			got <- task
			if task.Name == "broken" {
				return errors.New("handler failed")
			}
			return nil
		})
	}()

	var names []string
	for len(names) < 2 {
		select {
		case task := <-got:
			names = append(names, task.Name)
		case <-time.After(3 * time.Second):
			req.FailNow("tasks were not consumed")
		}
	}
	req.Equal([]string{"broken", domain.TaskNotify}, names)

	// Both are acked and removed, including the failed one
	req.Eventually(func() bool {
		n, err := rdb.XLen(context.Background(), readyKey).Result()
		return err == nil && n == 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(3 * time.Second):
		req.FailNow("consumer did not stop")
	}
}

func TestRedisTaskQueue_AcksWhenStoppedMidHandle(t *testing.T) {
	req := require.New(t)
	_, rdb := newTestClient(t)
	q := NewRedisTaskQueue(rdb, slog.Default(), 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := q.Schedule(ctx, domain.TaskNotify, []byte(`{"user_id":"u1","message":"bye"}`), 0)
	req.NoError(err)

	// Given the worker is told to stop while a task is being handled
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(ctx, "workers", "w1", func(context.Context, domain.Task) error {
			cancel()
			return nil
		})
	}()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(3 * time.Second):
		req.FailNow("consumer did not stop")
	}

	// Then the task is still acked and removed
	pending, err := rdb.XPending(context.Background(), readyKey, "workers").Result()
	req.NoError(err)
	req.Zero(pending.Count)
	n, err := rdb.XLen(context.Background(), readyKey).Result()
	req.NoError(err)
	req.Zero(n)
}
