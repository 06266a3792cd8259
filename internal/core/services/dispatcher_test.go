package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"murmur/internal/app/registry"
	"murmur/internal/core/domain"
	"murmur/internal/plugins/memory"
)

func TestDispatcherService_DeliverToUser(t *testing.T) {
	ctx := context.Background()
	setup := func() (*registry.Registry, *PresenceService, *DispatcherService) {
		reg := registry.NewRegistry(slog.Default())
		p := NewPresenceService(slog.Default(), memory.NewPresenceStore(time.Minute), reg, time.Hour, time.Second)
		return reg, p, NewDispatcherService(slog.Default(), p, reg)
	}

	t.Run("should deliver to the registered connection", func(t *testing.T) {
		req := require.New(t)
		reg, p, d := setup()
		ch := &recordChannel{}
		reg.Register("c1", ch)
		p.Publish(ctx, "u1", "c1")

		ok := d.DeliverToUser(ctx, "u1", domain.NewPong())

		req.True(ok)
		req.Equal([]string{"pong"}, ch.types())
	})

	t.Run("should be false for an offline user", func(t *testing.T) {
		req := require.New(t)
		_, _, d := setup()

		req.False(d.DeliverToUser(ctx, "nobody", domain.NewPong()))
	})

	t.Run("should be false for a stale entry", func(t *testing.T) {
		req := require.New(t)
		_, p, d := setup()
		p.Publish(ctx, "u1", "gone")

		req.False(d.DeliverToUser(ctx, "u1", domain.NewPong()))
	})

	t.Run("should be false and drop the connection when the write fails", func(t *testing.T) {
		req := require.New(t)
		reg, p, d := setup()
		ch := &recordChannel{}
		ch.breakPipe()
		reg.Register("c1", ch)
		p.Publish(ctx, "u1", "c1")

		req.False(d.DeliverToUser(ctx, "u1", domain.NewPong()))
		req.False(reg.Contains("c1"))
	})
}
