package store

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username taken")
)

type ChatRepository interface {
	CreateUser(params CreateUserParams) (User, error)
	GetUserById(id string) (User, error)
	GetUserByUsername(username string) (User, error)
	ListUsers() ([]User, error)
	AppendMessage(msg Message) error
	ListMessages() ([]Message, error)
}
