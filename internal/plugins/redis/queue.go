package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

var _ contracts.TaskQueue = (*RedisTaskQueue)(nil)

const (
	delayedKey = "tasks:delayed"
	readyKey   = "tasks:ready"
	promoteMax = 100
)

// RedisTaskQueue parks delayed tasks in a sorted set scored by due time and moves
// them onto a stream read by a consumer group once due.
type RedisTaskQueue struct {
	rdb   *redis.Client
	block time.Duration
	log   *slog.Logger
}

func NewRedisTaskQueue(rdb *redis.Client, log *slog.Logger, block time.Duration) *RedisTaskQueue {
	if block <= 0 {
		block = 2 * time.Second
	}
	return &RedisTaskQueue{rdb: rdb, block: block, log: log}
}

func (q *RedisTaskQueue) Schedule(ctx context.Context, name string, payload []byte, delay time.Duration) (string, error) {
	task := domain.Task{
		ID:      uuid.NewString(),
		Name:    name,
		Payload: payload,
		DueAt:   time.Now().Add(delay).UTC(),
	}
	data, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("queue - schedule - encode: %w", err)
	}
	if delay <= 0 {
		return task.ID, q.push(ctx, data)
	}
	err = q.rdb.ZAdd(ctx, delayedKey, redis.Z{
		Score:  float64(task.DueAt.UnixMilli()),
		Member: data,
	}).Err()
	if err != nil {
		return "", fmt.Errorf("queue - schedule - zadd: %w", err)
	}
	return task.ID, nil
}

func (q *RedisTaskQueue) push(ctx context.Context, data []byte) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: readyKey,
		MaxLen: 10000,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"data": data},
	}).Err()
}

// PromoteDue is safe to run from several processes: only the one whose ZREM
// succeeds pushes the task.
func (q *RedisTaskQueue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	due, err := q.rdb.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: promoteMax,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("queue - promote - range: %w", err)
	}
	promoted := 0
	for _, member := range due {
		removed, err := q.rdb.ZRem(ctx, delayedKey, member).Result()
		if err != nil {
			return promoted, fmt.Errorf("queue - promote - zrem: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := q.push(ctx, []byte(member)); err != nil {
			return promoted, fmt.Errorf("queue - promote - xadd: %w", err)
		}
		promoted++
	}
	return promoted, nil
}

// Consume delivers each ready task at most once: it is acked and deleted whether
// or not the handler succeeds.
func (q *RedisTaskQueue) Consume(
	ctx context.Context,
	group, consumer string,
	handler func(ctx context.Context, task domain.Task) error,
) error {
	// Create group if not exists
	err := q.rdb.XGroupCreateMkStream(ctx, readyKey, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("queue - consume - create group: %w", err)
	}
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := q.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{readyKey, ">"},
			Count:    10,
			Block:    q.block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			q.log.ErrorContext(ctx, "queue - consume - read failed", logging.Err(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		for _, stream := range res {
			for _, msg := range stream.Messages {
				q.handle(ctx, group, msg, handler)
			}
		}
	}
}

func (q *RedisTaskQueue) handle(
	ctx context.Context,
	group string,
	msg redis.XMessage,
	handler func(ctx context.Context, task domain.Task) error,
) {
	defer func() {
		// Shutdown mid-handle must not leave the entry pending.
		ackCtx := context.WithoutCancel(ctx)
		if err := q.rdb.XAck(ackCtx, readyKey, group, msg.ID).Err(); err != nil {
			q.log.WarnContext(ackCtx, "queue - consume - ack failed", slog.String("message_id", msg.ID), logging.Err(err))
		}
		_ = q.rdb.XDel(ackCtx, readyKey, msg.ID).Err()
	}()
	raw, ok := msg.Values["data"].(string)
	if !ok {
		q.log.WarnContext(ctx, "queue - consume - message without data", slog.String("message_id", msg.ID))
		return
	}
	var task domain.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		q.log.WarnContext(ctx, "queue - consume - undecodable task", slog.String("message_id", msg.ID), logging.Err(err))
		return
	}
	if err := handler(ctx, task); err != nil {
		q.log.ErrorContext(ctx, "queue - consume - handler failed", logging.Task(task.ID, task.Name), logging.Err(err))
	}
}
