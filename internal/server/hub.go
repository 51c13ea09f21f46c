package server

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/tmathes/chatterbox/internal/stats"
	"github.com/tmathes/chatterbox/internal/store"
	"github.com/tmathes/chatterbox/internal/types"
)

// historyLimit bounds the catch-up replay sent to a newly authenticated
// connection. The full log is never broadcast.
const historyLimit = 500

const (
	statActiveConnections = "ActiveConnections"
	statTotalConnections  = "TotalConnections"
	statMessagesSent      = "MessagesSent"
	statAuthFailures      = "AuthFailures"
)

type stopReq struct {
	done chan struct{}
}

// ChatHub is the single serialization point for all shared state. Only the
// hub goroutine writes to the store or mutates the presence registry, which
// rules out interleaved load-modify-save races between connections.
type ChatHub struct {
	log            *log.Logger
	store          store.ChatRepository
	stats          stats.StatsProvider
	registry       *PresenceRegistry
	clients        map[*Client]struct{}
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	eventChan      chan *ClientMessage
	stop           chan stopReq
}

func NewChatHub(logger *log.Logger, repo store.ChatRepository, su stats.StatsProvider) (*ChatHub, error) {
	for _, name := range []string{
		statActiveConnections,
		statTotalConnections,
		statMessagesSent,
		statAuthFailures,
	} {
		su.RegisterMetric(name)
	}

	return &ChatHub{
		log:            logger,
		store:          repo,
		stats:          su,
		registry:       NewPresenceRegistry(),
		clients:        make(map[*Client]struct{}),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		eventChan:      make(chan *ClientMessage, 256),
		stop:           make(chan stopReq),
	}, nil
}

// Presence exposes the registry for the HTTP surface.
func (h *ChatHub) Presence() *PresenceRegistry {
	return h.registry
}

func (h *ChatHub) Run() {
	for {
		select {
		case client := <-h.RegisterChan:
			h.log.Printf("adding connection %s", client.id)
			h.clients[client] = struct{}{}
			h.stats.Incr(statActiveConnections)
			h.stats.Incr(statTotalConnections)
		case client := <-h.deRegisterChan:
			h.handleDisconnect(client)
		case msg := <-h.eventChan:
			h.dispatch(msg)
		case req := <-h.stop:
			h.log.Println("stopping client connections")
			for c := range h.clients {
				c.stopClient()
			}

			close(req.done)
			return
		}
	}
}

func (h *ChatHub) Shutdown(ctx context.Context) error {
	req := stopReq{done: make(chan struct{})}

	select {
	case h.stop <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *ChatHub) dispatch(msg *ClientMessage) {
	switch {
	case msg.Auth != nil:
		h.handleAuth(msg)
	case msg.Text != nil, msg.Image != nil:
		h.handleSend(msg)
	}
}

// handleAuth resolves the client-supplied user id against the store. On
// success the session becomes authenticated, presence is broadcast to
// everyone and the recent history is replayed to the requester alone.
func (h *ChatHub) handleAuth(msg *ClientMessage) {
	c := msg.client

	user, err := h.store.GetUserById(msg.Auth.UserId)
	if err != nil {
		h.log.Printf("auth failed on connection %s: %v", c.id, err)
		h.stats.Incr(statAuthFailures)
		c.queueMessage(ErrAuthFailed())
		return
	}

	safe := safeUser(user)
	if !c.session.Authenticate(safe) {
		h.log.Printf("ignoring auth on connection %s: session not open", c.id)
		return
	}

	h.registry.Add(c.id, safe)
	h.broadcast(UpdateUsers(h.registry.Snapshot()))

	messages, err := h.store.ListMessages()
	if err != nil {
		h.log.Println("list messages:", err)
	}
	if len(messages) > historyLimit {
		messages = messages[len(messages)-historyLimit:]
	}

	history := make([]types.Message, len(messages))
	for i, m := range messages {
		history[i] = wireMessage(m)
	}

	c.queueMessage(LoadMessages(history))
}

// handleSend persists and broadcasts a text or image message. Events from
// unauthenticated sessions are dropped silently, as are empty payloads.
func (h *ChatHub) handleSend(msg *ClientMessage) {
	c := msg.client

	sender, ok := c.session.User()
	if !ok {
		h.log.Printf("dropping message from unauthenticated connection %s", c.id)
		return
	}

	m := types.Message{
		Id:           strconv.FormatInt(time.Now().UnixMilli(), 10),
		UserId:       sender.Id,
		Username:     sender.Username,
		ProfileImage: sender.ProfileImage,
		Color:        sender.Color,
		Timestamp:    Now(),
	}

	switch {
	case msg.Text != nil:
		content := strings.TrimSpace(msg.Text.Content)
		if content == "" {
			return
		}
		m.Text = content
	case msg.Image != nil:
		if msg.Image.Url == "" {
			return
		}
		m.Image = msg.Image.Url
	}

	// a failed write is logged, not surfaced: connected clients still get
	// the message even when persistence lagged behind
	if err := h.store.AppendMessage(storeMessage(m)); err != nil {
		h.log.Println("append message:", err)
	}

	h.stats.Incr(statMessagesSent)
	h.broadcast(NewMessage(&m))
}

// handleDisconnect drops the connection and, if it was authenticated,
// removes its presence entry and re-broadcasts the snapshot.
func (h *ChatHub) handleDisconnect(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	h.log.Printf("removing connection %s", c.id)
	delete(h.clients, c)
	h.stats.Decr(statActiveConnections)

	if c.session.Close() {
		h.registry.Remove(c.id)
		h.broadcast(UpdateUsers(h.registry.Snapshot()))
	}
}

// broadcast fans msg out to every connection, the sender included. Delivery
// is best-effort: a full send buffer drops the message for that client only.
func (h *ChatHub) broadcast(msg *ServerMessage) {
	for client := range h.clients {
		client.queueMessage(msg)
	}
}

func safeUser(u store.User) types.SafeUser {
	return types.SafeUser{
		Id:           u.Id,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
		Color:        u.Color,
	}
}

func wireMessage(m store.Message) types.Message {
	return types.Message{
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

func storeMessage(m types.Message) store.Message {
	return store.Message{
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
