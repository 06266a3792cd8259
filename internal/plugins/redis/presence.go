package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
)

var _ contracts.PresenceStore = (*RedisPresenceStore)(nil)

// Only touch the key while it still names the caller's connection.
var (
	refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
	revokeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
)

// RedisPresenceStore keeps one string key per user holding the connection id.
type RedisPresenceStore struct {
	rdb *redis.Client
}

func NewRedisPresenceStore(rdb *redis.Client) *RedisPresenceStore {
	return &RedisPresenceStore{
		rdb: rdb,
	}
}

func presenceKey(userID string) string {
	return "presence:user:" + userID
}

// Publish overwrites: the last connection to register wins.
func (p *RedisPresenceStore) Publish(ctx context.Context, userID, connID string, ttl time.Duration) error {
	return p.rdb.Set(ctx, presenceKey(userID), connID, ttl).Err()
}

func (p *RedisPresenceStore) Lookup(ctx context.Context, userID string) (string, error) {
	connID, err := p.rdb.Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrPresenceNotFound
	}
	return connID, err
}

func (p *RedisPresenceStore) Refresh(ctx context.Context, userID, connID string, ttl time.Duration) (bool, error) {
	n, err := refreshScript.Run(ctx, p.rdb, []string{presenceKey(userID)}, connID, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *RedisPresenceStore) Revoke(ctx context.Context, userID, connID string) (bool, error) {
	if connID == "" {
		n, err := p.rdb.Del(ctx, presenceKey(userID)).Result()
		return n > 0, err
	}
	n, err := revokeScript.Run(ctx, p.rdb, []string{presenceKey(userID)}, connID).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
