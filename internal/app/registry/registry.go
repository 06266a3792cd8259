package registry

import (
	"context"
	"log/slog"
	"sync"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

var _ contracts.ConnectionRegistry = (*Registry)(nil)

// Registry holds the live sockets of this process, keyed by connection id.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]contracts.Channel // connection_id → channel
	log     *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		clients: make(map[string]contracts.Channel),
		log:     log,
	}
}

func (r *Registry) Register(connID string, ch contracts.Channel) {
	r.mu.Lock()
	r.clients[connID] = ch
	r.mu.Unlock()
	r.log.Debug("registry - register - ok", logging.Conn(connID))
}

func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	_, ok := r.clients[connID]
	delete(r.clients, connID)
	r.mu.Unlock()
	if ok {
		r.log.Debug("registry - unregister - ok", logging.Conn(connID))
	}
}

func (r *Registry) Send(ctx context.Context, connID string, data []byte) bool {
	r.mu.RLock()
	ch, ok := r.clients[connID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if err := ch.Send(ctx, data); err != nil {
		r.log.Warn("registry - send - dropping connection", logging.Conn(connID), logging.Err(err))
		r.dropIfSame(connID, ch)
		return false
	}
	return true
}

// dropIfSame leaves a newer registration under the same id untouched. The failed
// channel is closed either way so its owner runs its disconnect cleanup.
func (r *Registry) dropIfSame(connID string, ch contracts.Channel) {
	r.mu.Lock()
	if cur, ok := r.clients[connID]; ok && cur == ch {
		delete(r.clients, connID)
	}
	r.mu.Unlock()
	ch.Close(domain.CloseServerError, "delivery failed")
}

func (r *Registry) Contains(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[connID]
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
