package server

import (
	"time"

	"github.com/tmathes/chatterbox/internal/types"
)

// ClientMessage is the inbound event envelope. Exactly one of the event
// fields is set; the kind is discriminated by which pointer is non-nil.
type ClientMessage struct {
	Auth   *Auth   `json:"auth,omitempty"`
	Text   *Text   `json:"text,omitempty"`
	Image  *Image  `json:"image,omitempty"`
	client *Client `json:"-"`
}

type Auth struct {
	UserId string `json:"user_id"`
}

type Text struct {
	Content string `json:"content"`
}

type Image struct {
	Url string `json:"url"`
}

// ServerMessage is the outbound event envelope. The event kind is
// discriminated by which pointer is non-nil, so an empty presence snapshot
// still serializes as an update_users event.
type ServerMessage struct {
	Timestamp  time.Time      `json:"timestamp"`
	AuthFailed *AuthFailed    `json:"auth_failed,omitempty"`
	Users      *UserList      `json:"update_users,omitempty"`
	History    *MessageList   `json:"load_messages,omitempty"`
	Message    *types.Message `json:"new_message,omitempty"`
}

type AuthFailed struct {
	Reason string `json:"reason"`
}

type UserList struct {
	Users []types.SafeUser `json:"users"`
}

type MessageList struct {
	Messages []types.Message `json:"messages"`
}

func ErrAuthFailed() *ServerMessage {
	return &ServerMessage{
		Timestamp: Now(),
		AuthFailed: &AuthFailed{
			Reason: "unknown user",
		},
	}
}

func UpdateUsers(users []types.SafeUser) *ServerMessage {
	return &ServerMessage{
		Timestamp: Now(),
		Users:     &UserList{Users: users},
	}
}

func LoadMessages(history []types.Message) *ServerMessage {
	return &ServerMessage{
		Timestamp: Now(),
		History:   &MessageList{Messages: history},
	}
}

func NewMessage(msg *types.Message) *ServerMessage {
	return &ServerMessage{
		Timestamp: msg.Timestamp,
		Message:   msg,
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
