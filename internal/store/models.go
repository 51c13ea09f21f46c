package store

import "time"

type User struct {
	Id           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Color        string    `json:"color"`
	CreatedAt    time.Time `json:"created_at"`
}

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

type CreateUserParams struct {
	Id           string
	Username     string
	PasswordHash string
	ProfileImage string
	Color        string
}
