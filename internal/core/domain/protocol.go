package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

type MessageType string

const (
	TypeConnected           MessageType = "connected"
	TypeUserJoined          MessageType = "user_joined"
	TypeUserLeft            MessageType = "user_left"
	TypeWebRTCSignal        MessageType = "webrtc_signal"
	TypeChat                MessageType = "chat"
	TypeError               MessageType = "error"
	TypeRoomDeleted         MessageType = "room_deleted"
	TypeUnreadNotifications MessageType = "unread_notifications"
	TypeNewNotification     MessageType = "new_notification"
	TypePing                MessageType = "ping"
	TypePong                MessageType = "pong"
)

// Machine readable codes carried by error envelopes.
const (
	CodeAuthFailed     = "AUTH_FAILED"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeRoomNotLive    = "ROOM_NOT_LIVE"
	CodeServerError    = "SERVER_ERROR"
	CodeInvalidMessage = "INVALID_MESSAGE"
	CodeUnknownType    = "UNKNOWN_MESSAGE_TYPE"
)

// Close codes from RFC 6455.
const (
	CloseNormal          = 1000
	ClosePolicyViolation = 1008
	CloseServerError     = 1011
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v against its validate tags.
func Validate(v any) error { return validate.Struct(v) }

// Inbound is a frame received from a client, one variant per accepted type.
type Inbound interface {
	InboundType() MessageType
}

// SignalIn carries an SDP offer/answer or ICE candidate. Data is relayed untouched.
type SignalIn struct {
	TargetUserID string          `json:"target_user_id" validate:"omitempty,max=128"`
	SignalType   string          `json:"signal_type" validate:"omitempty,max=64"`
	Data         json.RawMessage `json:"data"`
}

type ChatIn struct {
	Message   string          `json:"message" validate:"required,max=4096"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	TempID    string          `json:"temp_id,omitempty" validate:"omitempty,max=128"`
}

type PingIn struct{}

// UnknownIn is returned for well formed frames whose type is not handled.
type UnknownIn struct {
	Type string
}

func (SignalIn) InboundType() MessageType    { return TypeWebRTCSignal }
func (ChatIn) InboundType() MessageType      { return TypeChat }
func (PingIn) InboundType() MessageType      { return TypePing }
func (u UnknownIn) InboundType() MessageType { return MessageType(u.Type) }

// DecodeInbound reads the type discriminator first and only then decodes the
// variant it names.
func DecodeInbound(raw []byte) (Inbound, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformedMessage
	}
	typ := gjson.GetBytes(raw, "type")
	if typ.Type != gjson.String || typ.Str == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	switch MessageType(typ.Str) {
	case TypeWebRTCSignal:
		var in SignalIn
		if err := decodeInto(raw, &in); err != nil {
			return nil, err
		}
		return in, nil
	case TypeChat:
		var in ChatIn
		if err := decodeInto(raw, &in); err != nil {
			return nil, err
		}
		return in, nil
	case TypePing:
		return PingIn{}, nil
	default:
		return UnknownIn{Type: typ.Str}, nil
	}
}

func decodeInto(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}

// Envelope is any frame the server pushes to a client.
type Envelope interface {
	EnvelopeType() MessageType
}

func Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// ConnectedMessage is sent once to a member that just joined a room.
type ConnectedMessage struct {
	Type                 MessageType   `json:"type"`
	RoomID               string        `json:"room_id"`
	UserID               string        `json:"user_id"`
	Username             string        `json:"username"`
	Message              string        `json:"message"`
	ExistingParticipants []UserProfile `json:"existing_participants"`
}

func NewConnected(roomID string, self UserProfile, existing []UserProfile) ConnectedMessage {
	if existing == nil {
		existing = []UserProfile{}
	}
	return ConnectedMessage{
		Type:                 TypeConnected,
		RoomID:               roomID,
		UserID:               self.ID,
		Username:             self.Username,
		Message:              "Successfully connected to room",
		ExistingParticipants: existing,
	}
}

// MemberMessage announces a member joining or leaving.
type MemberMessage struct {
	Type   MessageType `json:"type"`
	User   UserProfile `json:"user"`
	RoomID string      `json:"room_id"`
}

func NewUserJoined(roomID string, user UserProfile) MemberMessage {
	return MemberMessage{Type: TypeUserJoined, User: user, RoomID: roomID}
}

func NewUserLeft(roomID string, user UserProfile) MemberMessage {
	return MemberMessage{Type: TypeUserLeft, User: user, RoomID: roomID}
}

type SignalMessage struct {
	Type       MessageType     `json:"type"`
	FromUserID string          `json:"from_user_id"`
	SignalType string          `json:"signal_type,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

func NewSignal(fromUserID string, in SignalIn) SignalMessage {
	return SignalMessage{
		Type:       TypeWebRTCSignal,
		FromUserID: fromUserID,
		SignalType: in.SignalType,
		Data:       in.Data,
	}
}

type ChatMessage struct {
	Type      MessageType     `json:"type"`
	RoomID    string          `json:"room_id"`
	UserID    string          `json:"user_id"`
	Username  string          `json:"username"`
	Message   string          `json:"message"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	TempID    string          `json:"temp_id,omitempty"`
}

func NewChat(roomID string, from UserProfile, in ChatIn) ChatMessage {
	return ChatMessage{
		Type:      TypeChat,
		RoomID:    roomID,
		UserID:    from.ID,
		Username:  from.Username,
		Message:   in.Message,
		Timestamp: in.Timestamp,
		TempID:    in.TempID,
	}
}

// ErrorMessage is a client safe error.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

func NewError(code, message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Code: code, Message: message}
}

type RoomDeletedMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

func NewRoomDeleted() RoomDeletedMessage {
	return RoomDeletedMessage{Type: TypeRoomDeleted, Message: "Room has been deleted by the host"}
}

// NotificationView is the wire shape of a Notification.
type NotificationView struct {
	ID        string  `json:"id"`
	Title     *string `json:"title"`
	Message   string  `json:"message"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
}

func ViewOf(n Notification) NotificationView {
	return NotificationView{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type UnreadNotificationsMessage struct {
	Type MessageType `json:"type"`
	Data UnreadData  `json:"data"`
}

type UnreadData struct {
	Notifications []NotificationView `json:"notifications"`
	Count         int                `json:"count"`
}

func NewUnreadNotifications(ns []Notification) UnreadNotificationsMessage {
	views := lo.Map(ns, func(n Notification, _ int) NotificationView { return ViewOf(n) })
	return UnreadNotificationsMessage{
		Type: TypeUnreadNotifications,
		Data: UnreadData{Notifications: views, Count: len(views)},
	}
}

type NewNotificationMessage struct {
	Type MessageType      `json:"type"`
	Data NotificationView `json:"data"`
}

func NewNewNotification(n Notification) NewNotificationMessage {
	return NewNotificationMessage{Type: TypeNewNotification, Data: ViewOf(n)}
}

type PongMessage struct {
	Type MessageType `json:"type"`
}

func NewPong() PongMessage { return PongMessage{Type: TypePong} }

func (ConnectedMessage) EnvelopeType() MessageType           { return TypeConnected }
func (m MemberMessage) EnvelopeType() MessageType            { return m.Type }
func (SignalMessage) EnvelopeType() MessageType              { return TypeWebRTCSignal }
func (ChatMessage) EnvelopeType() MessageType                { return TypeChat }
func (ErrorMessage) EnvelopeType() MessageType               { return TypeError }
func (RoomDeletedMessage) EnvelopeType() MessageType         { return TypeRoomDeleted }
func (UnreadNotificationsMessage) EnvelopeType() MessageType { return TypeUnreadNotifications }
func (NewNotificationMessage) EnvelopeType() MessageType     { return TypeNewNotification }
func (PongMessage) EnvelopeType() MessageType                { return TypePong }
