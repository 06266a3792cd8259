package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"murmur/internal/config"
)

// NewUpgrader allows every origin when none are configured.
func NewUpgrader(cfg config.SocketConfig) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(cfg.AllowedOrigins) == 0 {
				return true
			}
			return lo.Contains(cfg.AllowedOrigins, r.Header.Get("Origin"))
		},
	}
}

// IsExpectedClose reports read errors that are part of a normal disconnect.
func IsExpectedClose(err error) bool {
	return !websocket.IsUnexpectedCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
		websocket.ClosePolicyViolation,
	)
}
