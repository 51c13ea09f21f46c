package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MaxMessages bounds the persisted log. Appends beyond the bound evict the
// oldest entries first.
const MaxMessages = 2000

const (
	usersFile    = "users.json"
	messagesFile = "messages.json"
)

// FileChatRepository persists users and messages as JSON files under a data
// directory. Every write rewrites the whole file, so all writers must go
// through the same instance; the mutex serializes the load-modify-save
// cycle.
type FileChatRepository struct {
	dir string
	mu  sync.Mutex
}

func NewFileChatRepository(dir string) (*FileChatRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return &FileChatRepository{dir: dir}, nil
}

// readJsonFile decodes the named file into v. A missing or corrupt file
// reads as empty, never as an error.
func readJsonFile(path string, v any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	if err := json.Unmarshal(data, v); err != nil {
		return
	}
}

func writeJsonFile(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(tmp), err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}

	return nil
}

func (r *FileChatRepository) loadUsers() []User {
	var users []User
	readJsonFile(filepath.Join(r.dir, usersFile), &users)
	return users
}

func (r *FileChatRepository) saveUsers(users []User) error {
	return writeJsonFile(filepath.Join(r.dir, usersFile), users)
}

func (r *FileChatRepository) loadMessages() []Message {
	var messages []Message
	readJsonFile(filepath.Join(r.dir, messagesFile), &messages)
	return messages
}

func (r *FileChatRepository) saveMessages(messages []Message) error {
	return writeJsonFile(filepath.Join(r.dir, messagesFile), messages)
}

func (r *FileChatRepository) CreateUser(params CreateUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.loadUsers()
	for _, u := range users {
		if strings.EqualFold(u.Username, params.Username) {
			return User{}, ErrUsernameTaken
		}
	}

	user := User{
		Id:           params.Id,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		ProfileImage: params.ProfileImage,
		Color:        params.Color,
		CreatedAt:    time.Now().UTC(),
	}

	users = append(users, user)
	if err := r.saveUsers(users); err != nil {
		return User{}, err
	}

	return user, nil
}

func (r *FileChatRepository) GetUserById(id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.loadUsers() {
		if u.Id == id {
			return u, nil
		}
	}

	return User{}, ErrUserNotFound
}

func (r *FileChatRepository) GetUserByUsername(username string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.loadUsers() {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}

	return User{}, ErrUserNotFound
}

func (r *FileChatRepository) ListUsers() ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadUsers(), nil
}

// AppendMessage appends msg to the log, evicting the oldest entries once the
// log exceeds MaxMessages.
func (r *FileChatRepository) AppendMessage(msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := append(r.loadMessages(), msg)
	if len(messages) > MaxMessages {
		messages = messages[len(messages)-MaxMessages:]
	}

	return r.saveMessages(messages)
}

func (r *FileChatRepository) ListMessages() ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadMessages(), nil
}
