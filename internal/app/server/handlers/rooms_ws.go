package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"murmur/internal/app/server/ws"
	"murmur/internal/config"
	"murmur/internal/core/domain"
	"murmur/internal/core/services"
	"murmur/pkg/logging"
	"murmur/pkg/middleware"
)

// RoomSocketHandler serves the audio room socket: join, signalling relay and chat.
type RoomSocketHandler struct {
	tokens   middleware.TokenVerifier
	users    domain.UserRepository
	rooms    *services.RoomManager
	upgrader *websocket.Upgrader
	cfg      config.SocketConfig
}

func NewRoomSocketHandler(
	tokens middleware.TokenVerifier,
	users domain.UserRepository,
	rooms *services.RoomManager,
	cfg config.SocketConfig,
) *RoomSocketHandler {
	return &RoomSocketHandler{
		tokens:   tokens,
		users:    users,
		rooms:    rooms,
		upgrader: ws.NewUpgrader(cfg),
		cfg:      cfg,
	}
}

func (h *RoomSocketHandler) Handler(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room_id")
	log := logging.FromContext(r.Context()).With(logging.Room(roomID))
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("room_id", roomID))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WarnContext(r.Context(), "room socket - upgrade - failed", logging.Err(err))
		return
	}
	// The socket outlives the upgrade request.
	ctx := logging.WithContext(context.WithoutCancel(r.Context()), log)
	client := ws.NewClient(conn, h.cfg, log)

	identity, err := h.tokens.Verify(ctx, middleware.TokenFromRequest(r), domain.TokenTypeAccess)
	if err != nil {
		log.WarnContext(ctx, "room socket - auth - rejected", logging.Err(err))
		reject(ctx, client, domain.CodeAuthFailed, msgAuthFailed, domain.ClosePolicyViolation)
		return
	}
	profile, err := h.users.GetUserProfile(ctx, identity.UserID)
	if err != nil {
		log.WarnContext(ctx, "room socket - auth - profile unavailable", logging.User(identity.UserID), logging.Err(err))
		if errors.Is(err, domain.ErrUserNotFound) {
			reject(ctx, client, domain.CodeAuthFailed, msgAuthFailed, domain.ClosePolicyViolation)
		} else {
			reject(ctx, client, domain.CodeServerError, msgServerError, domain.CloseServerError)
		}
		return
	}
	ctx, log = logging.With(ctx, logging.User(profile.ID))

	if _, err := h.rooms.Join(ctx, roomID, *profile, client); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			reject(ctx, client, domain.CodeRoomNotFound, msgRoomNotFound, domain.ClosePolicyViolation)
		case errors.Is(err, domain.ErrRoomNotLive):
			reject(ctx, client, domain.CodeRoomNotLive, msgRoomNotLive, domain.ClosePolicyViolation)
		case errors.Is(err, domain.ErrConnectionGone):
			client.Close(domain.CloseNormal, "")
		default:
			log.ErrorContext(ctx, "room socket - join - failed", logging.Err(err))
			reject(ctx, client, domain.CodeServerError, msgServerError, domain.CloseServerError)
		}
		return
	}
	defer h.rooms.Detach(ctx, roomID, *profile, client)

	err = client.ReadLoop(func(data []byte) {
		guard(ctx, client, func() { h.handle(ctx, roomID, *profile, client, data) })
	})
	log.InfoContext(ctx, "room socket - read loop - closed", slog.Bool("clean", ws.IsExpectedClose(err)))
}

func (h *RoomSocketHandler) handle(ctx context.Context, roomID string, profile domain.UserProfile, client *ws.Client, data []byte) {
	in, err := domain.DecodeInbound(data)
	if err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "room socket - decode - rejected", logging.Err(err))
		send(ctx, client, domain.NewError(domain.CodeInvalidMessage, err.Error()))
		return
	}
	switch m := in.(type) {
	case domain.SignalIn:
		h.rooms.RelaySignal(ctx, roomID, profile.ID, m)
	case domain.ChatIn:
		h.rooms.Chat(ctx, roomID, profile, m)
	case domain.PingIn:
		send(ctx, client, domain.NewPong())
	case domain.UnknownIn:
		send(ctx, client, domain.NewError(domain.CodeUnknownType, "Unknown message type: "+m.Type))
	}
}
