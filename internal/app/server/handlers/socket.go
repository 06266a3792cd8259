package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"murmur/internal/app/server/ws"
	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

const (
	msgAuthFailed   = "Authentication failed. Please login and try again."
	msgRoomNotFound = "Room not found"
	msgRoomNotLive  = "Room is not live"
	msgServerError  = "Internal server error"
)

// reject sends an error envelope and then closes the socket behind it.
func reject(ctx context.Context, client *ws.Client, code, message string, closeCode int) {
	send(ctx, client, domain.NewError(code, message))
	client.Close(closeCode, code)
}

// send drops the frame when the socket cannot take it; the read loop notices the dead socket.
func send(ctx context.Context, client *ws.Client, env domain.Envelope) {
	data, err := domain.Encode(env)
	if err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "socket - send - encode failed", logging.MsgType(string(env.EnvelopeType())), logging.Err(err))
		return
	}
	_ = client.Send(ctx, data)
}

// guard turns a panic in fn into a SERVER_ERROR close so the connection cleanup still runs.
func guard(ctx context.Context, client *ws.Client, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "socket - handle - panic recovered", slog.String("panic", fmt.Sprint(rec)))
			reject(ctx, client, domain.CodeServerError, msgServerError, domain.CloseServerError)
		}
	}()
	fn()
}
