package domain

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomNotLive          = errors.New("room is not live")
	ErrNotRoomHost          = errors.New("only the room host can delete the room")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrPresenceNotFound     = errors.New("presence entry not found")
	ErrTokenMissing         = errors.New("token missing")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrTokenType            = errors.New("token type not allowed")
	ErrMalformedMessage     = errors.New("malformed message")
	ErrInvalidMessage       = errors.New("invalid message")
	ErrUnknownTask          = errors.New("unknown task")
	ErrNotificationNotSaved = errors.New("notification not saved")
	ErrConnectionGone       = errors.New("connection is gone")
	ErrSchedulerDisabled    = errors.New("task scheduler is not configured")
)
