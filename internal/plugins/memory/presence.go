package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
)

var _ contracts.PresenceStore = (*PresenceStore)(nil)

// PresenceStore keeps presence inside this process. It backs single node
// deployments and tests; entries are invisible to other processes.
type PresenceStore struct {
	mu    sync.Mutex // makes the compare-then-write sequences atomic
	cache *gocache.Cache
}

func NewPresenceStore(cleanupInterval time.Duration) *PresenceStore {
	return &PresenceStore{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func key(userID string) string {
	return "presence:user:" + userID
}

func (s *PresenceStore) Publish(_ context.Context, userID, connID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(key(userID), connID, ttl)
	return nil
}

func (s *PresenceStore) Lookup(_ context.Context, userID string) (string, error) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return "", domain.ErrPresenceNotFound
	}
	return v.(string), nil
}

func (s *PresenceStore) Refresh(_ context.Context, userID, connID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(key(userID)); !ok || v.(string) != connID {
		return false, nil
	}
	s.cache.Set(key(userID), connID, ttl)
	return true, nil
}

func (s *PresenceStore) Revoke(_ context.Context, userID, connID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(key(userID))
	if !ok || (connID != "" && v.(string) != connID) {
		return false, nil
	}
	s.cache.Delete(key(userID))
	return true, nil
}
