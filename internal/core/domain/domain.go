package domain

import (
	"encoding/json"
	"time"
)

// TokenTypeAccess is the only token type admitted on a socket.
const TokenTypeAccess = "access"

// Identity is the result of a successful token verification.
type Identity struct {
	UserID    string
	TokenType string
}

// UserProfile is the public part of a user sent to room peers.
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Room is the persisted audio room. Its live members are tracked separately, in memory.
type Room struct {
	ID        string
	Title     string
	IsLive    bool
	HostID    string
	CreatedAt time.Time
}

// Notification is the durable record behind every live push.
type Notification struct {
	ID        string
	UserID    string
	Title     *string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

func NewNotification(userID, message string, title *string) *Notification {
	return &Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

// PresenceEntry maps a user to the connection that last registered for it.
type PresenceEntry struct {
	UserID       string
	ConnectionID string
}

// Task is a unit of deferred work handed to the scheduler.
type Task struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
	DueAt   time.Time       `json:"due_at"`
}

const TaskNotify = "notify"

// NotifyTask is the payload of a TaskNotify task.
type NotifyTask struct {
	UserID  string  `json:"user_id" validate:"required"`
	Message string  `json:"message" validate:"required"`
	Title   *string `json:"title,omitempty"`
}
