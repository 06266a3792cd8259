package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"murmur/internal/app/server/ws"
	"murmur/internal/config"
	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/internal/core/services"
	"murmur/pkg/logging"
	"murmur/pkg/middleware"
)

// NotificationSocketHandler keeps one socket per user registered and published
// so notifications can be pushed to it.
type NotificationSocketHandler struct {
	tokens        middleware.TokenVerifier
	registry      contracts.ConnectionRegistry
	presence      contracts.PresenceDirectory
	notifications *services.NotificationService
	upgrader      *websocket.Upgrader
	cfg           config.SocketConfig
	heartbeat     time.Duration
}

func NewNotificationSocketHandler(
	tokens middleware.TokenVerifier,
	registry contracts.ConnectionRegistry,
	presence contracts.PresenceDirectory,
	notifications *services.NotificationService,
	cfg config.SocketConfig,
	heartbeat time.Duration,
) *NotificationSocketHandler {
	return &NotificationSocketHandler{
		tokens:        tokens,
		registry:      registry,
		presence:      presence,
		notifications: notifications,
		upgrader:      ws.NewUpgrader(cfg),
		cfg:           cfg,
		heartbeat:     heartbeat,
	}
}

func (h *NotificationSocketHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WarnContext(r.Context(), "notification socket - upgrade - failed", logging.Err(err))
		return
	}
	client := ws.NewClient(conn, h.cfg, log)
	ctx := logging.WithContext(context.WithoutCancel(r.Context()), log)

	identity, err := h.tokens.Verify(ctx, middleware.TokenFromRequest(r), domain.TokenTypeAccess)
	if err != nil {
		log.WarnContext(ctx, "notification socket - auth - rejected", logging.Err(err))
		reject(ctx, client, domain.CodeAuthFailed, msgAuthFailed, domain.ClosePolicyViolation)
		return
	}
	userID, connID := identity.UserID, client.ID()
	ctx, log = logging.With(ctx, logging.User(userID), logging.Conn(connID))

	h.registry.Register(connID, client)
	h.presence.Publish(ctx, userID, connID)
	defer func() {
		h.registry.Unregister(connID)
		h.presence.Revoke(ctx, userID, connID)
		log.InfoContext(ctx, "notification socket - cleanup - done")
	}()

	if err := h.notifications.SendUnread(ctx, userID, connID); err != nil {
		if errors.Is(err, domain.ErrConnectionGone) {
			client.Close(domain.CloseNormal, "")
			return
		}
		reject(ctx, client, domain.CodeServerError, msgServerError, domain.CloseServerError)
		return
	}
	log.InfoContext(ctx, "notification socket - connect - ok")

	go h.keepAlive(ctx, userID, connID, client.Done())

	_ = client.ReadLoop(func(data []byte) {
		guard(ctx, client, func() { h.handle(ctx, client, data) })
	})
}

// keepAlive refreshes the presence entry until the socket is gone.
func (h *NotificationSocketHandler) keepAlive(ctx context.Context, userID, connID string, done <-chan struct{}) {
	if h.heartbeat <= 0 {
		return
	}
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.presence.Refresh(ctx, userID, connID)
		}
	}
}

// Only ping is meaningful here; anything else is logged and ignored.
func (h *NotificationSocketHandler) handle(ctx context.Context, client *ws.Client, data []byte) {
	in, err := domain.DecodeInbound(data)
	if err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "notification socket - decode - ignored", logging.Err(err))
		return
	}
	if _, ok := in.(domain.PingIn); ok {
		send(ctx, client, domain.NewPong())
		return
	}
	logging.FromContext(ctx).DebugContext(ctx, "notification socket - message - ignored", logging.MsgType(string(in.InboundType())))
}
