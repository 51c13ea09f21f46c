package api

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tmathes/chatterbox/internal/server"
	"github.com/tmathes/chatterbox/internal/store"
	"github.com/tmathes/chatterbox/internal/types"
)

const maxUploadBytes = 10 << 20

// colorPalette holds the display accents assigned round-robin-by-chance at
// registration. A user's color never changes after creation.
var colorPalette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#008080", "#9a6324",
}

type RegisterRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	ProfileImage string `json:"profile_image,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Printf("json encode: %v", err)
	}
}

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Username == "" || req.Password == "" {
		errResp := NewBadRequestError()
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	id, err := a.generateShortId()
	if err != nil {
		errResp := NewInternalServerError(err)
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newUser, err := a.db.CreateUser(store.CreateUserParams{
		Id:           id,
		Username:     req.Username,
		PasswordHash: pwdHash,
		ProfileImage: req.ProfileImage,
		Color:        colorPalette[rand.Intn(len(colorPalette))],
	})
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, store.ErrUsernameTaken) {
			errResp = NewConflictError()
		} else {
			errResp = NewInternalServerError(err)
		}
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	a.writeJson(w, http.StatusCreated, types.SafeUser{
		Id:           newUser.Id,
		Username:     newUser.Username,
		ProfileImage: newUser.ProfileImage,
		Color:        newUser.Color,
	})
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.Username == "" || lr.Password == "" {
		errResp := NewBadRequestError()
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := a.db.GetUserByUsername(lr.Username)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, store.ErrUserNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(dbUser.PasswordHash, lr.Password) {
		errResp := NewUnauthorizedError()
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	token, err := a.createJwtForSession(dbUser.Id, defaultJwtExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.SetCookie(w, createJwtCookie(token, defaultJwtExpiration))

	a.writeJson(w, http.StatusOK, types.SafeUser{
		Id:           dbUser.Id,
		Username:     dbUser.Username,
		ProfileImage: dbUser.ProfileImage,
		Color:        dbUser.Color,
	})
}

func (a *App) session(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := a.db.GetUserById(userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, store.ErrUserNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	a.writeJson(w, http.StatusOK, types.SafeUser{
		Id:           user.Id,
		Username:     user.Username,
		ProfileImage: user.ProfileImage,
		Color:        user.Color,
	})
}

func (a *App) logout(w http.ResponseWriter, _ *http.Request) {
	// instruct browser to delete cookie by overwriting it with an expired token
	http.SetCookie(w, createJwtCookie("", -defaultJwtExpiration))
	w.WriteHeader(http.StatusNoContent)
}

// getMessages returns the full persisted log. It requires no session since
// the page loads history before a socket is opened.
func (a *App) getMessages(w http.ResponseWriter, r *http.Request) {
	dbMessages, err := a.db.ListMessages()
	if err != nil {
		errResp := NewInternalServerError(err)
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages := make([]types.Message, len(dbMessages))
	for i, m := range dbMessages {
		messages[i] = types.Message{
			Id:           m.Id,
			UserId:       m.UserId,
			Username:     m.Username,
			ProfileImage: m.ProfileImage,
			Color:        m.Color,
			Text:         m.Text,
			Image:        m.Image,
			Timestamp:    m.Timestamp,
		}
	}

	a.writeJson(w, http.StatusOK, messages)
}

// getOnlineUsers returns the current presence snapshot.
func (a *App) getOnlineUsers(w http.ResponseWriter, r *http.Request) {
	a.writeJson(w, http.StatusOK, a.hub.Presence().Snapshot())
}

// upload stores a binary blob and returns its reference URI. The bytes are
// treated as opaque; nothing validates the content.
func (a *App) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errResp := NewBadRequestError()
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errResp := NewBadRequestError()
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	name := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(a.uploadDir, name))
	if err != nil {
		errResp := NewInternalServerError(err)
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		errResp := NewInternalServerError(err)
		a.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	a.writeJson(w, http.StatusCreated, map[string]string{
		"url": "/uploads/" + name,
	})
}

// serveWs upgrades the connection and hands it to the hub. The socket opens
// unauthenticated; the client authenticates in-band with an auth event.
func (a *App) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(a.allowedOrigins, origin)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(conn, a.hub, a.log)
	a.hub.RegisterChan <- client

	go client.Write()
	go client.Read()
}
