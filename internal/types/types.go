package types

import (
	"time"
)

// SafeUser is the projection of a user record that is safe to send to
// other clients. It never carries the password digest.
type SafeUser struct {
	Id           string `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image,omitempty"`
	Color        string `json:"color"`
}

// Message is the wire form of a chat message. The sender fields are a
// snapshot of the sender's profile at send time and are never re-joined
// against the live user record.
type Message struct {
	Id           string    `json:"id"`
	UserId       string    `json:"user_id"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Color        string    `json:"color"`
	Text         string    `json:"text,omitempty"`
	Image        string    `json:"image,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
