package hub

import (
	"encoding/json"
	"time"

	"linkhub/internal/pkg/randx"
)

// Inbound event names.
const (
	EventRegister        = "register"
	EventLogin           = "login"
	EventLogout          = "logout"
	EventCheckUserExists = "checkUserExists"
	EventFriendRequest   = "friendRequest"
	EventAcceptRequest   = "acceptRequest"
	EventRejectRequest   = "rejectRequest"
	EventDM              = "dm"
	EventChangeName      = "changeName"
	EventChangePassword  = "changePassword"
	EventChangeColor     = "changeColor"
	EventChangePhoto     = "changePhoto"
	EventNewLink         = "newLink"
)

// Outbound events owned by the transport.
const (
	EventError       = "error"
	EventAck         = "ack"
	EventTokenUpdate = "tokenUpdate"
)

// Message is the outbound envelope.
type Message struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage wraps payload in an envelope stamped with a fresh ID and the current time.
func NewMessage(eventType string, payload any) Message {
	return Message{
		ID:        randx.MessageID(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Inbound is the envelope clients send.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	TempID  string          `json:"tempId,omitempty"`
}

// ErrorPayload is the body of an error event.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Event   string `json:"event,omitempty"`
}

// AckPayload answers an inbound event that carried a tempId.
type AckPayload struct {
	TempID  string `json:"tempId"`
	OK      bool   `json:"ok"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// TokenUpdatePayload carries a refreshed session token.
type TokenUpdatePayload struct {
	Token string `json:"token"`
}

// CredentialsPayload is sent with register and login.
type CredentialsPayload struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=128"`
}

// RelationPayload is sent with friendRequest, acceptRequest and rejectRequest.
type RelationPayload struct {
	From string `json:"from" validate:"required,max=32"`
	To   string `json:"to" validate:"required,max=32"`
}

// DMPayload is sent with dm.
type DMPayload struct {
	To  string `json:"to" validate:"required,max=32"`
	Msg string `json:"msg" validate:"required"`
}

// NamePayload is sent with changeName.
type NamePayload struct {
	NewName string `json:"newName" validate:"required,max=32"`
}

// PasswordPayload is sent with changePassword.
type PasswordPayload struct {
	Password string `json:"password" validate:"required,max=128"`
}

// ColorPayload is sent with changeColor.
type ColorPayload struct {
	Color string `json:"color" validate:"required"`
}

// PhotoPayload is sent with changePhoto. An empty photo clears it.
type PhotoPayload struct {
	Photo string `json:"photo"`
}
