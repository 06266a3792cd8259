package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should apply defaults when only the secret is set", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("JWT_SECRET", "s3cret")

		cfg, err := Load()

		req.NoError(err)
		req.Equal("s3cret", cfg.SecretToken)
		req.Equal(":8080", cfg.Service.Add)
		req.Equal(time.Hour, cfg.Presence.TTL)
		req.Equal(30*time.Minute, cfg.Presence.HeartbeatInterval())
		req.Equal(256, cfg.Socket.SendBuffer)
		req.Equal("JSON", cfg.Logger.Format)
	})

	t.Run("should read nested keys with their section prefix", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("REDIS_URL", "redis://cache:6379/1")
		t.Setenv("DATABASE_URL", "postgres://db/murmur")
		t.Setenv("PRESENCE_TTL", "90s")
		t.Setenv("PRESENCE_HEARTBEAT", "10s")
		t.Setenv("WS_ALLOWED_ORIGINS", "https://a.io,https://b.io")

		cfg, err := Load()

		req.NoError(err)
		req.Equal("redis://cache:6379/1", cfg.Redis.URL)
		req.Equal("postgres://db/murmur", cfg.Postgres.URL)
		req.Equal(90*time.Second, cfg.Presence.TTL)
		req.Equal(10*time.Second, cfg.Presence.HeartbeatInterval())
		req.Equal([]string{"https://a.io", "https://b.io"}, cfg.Socket.AllowedOrigins)
	})

	t.Run("should fail without a signing secret", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("JWT_SECRET", "")
		req.NoError(os.Unsetenv("JWT_SECRET"))

		_, err := Load()

		req.Error(err)
	})
}
