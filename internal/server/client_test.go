package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmathes/chatterbox/internal/stats"
	"github.com/tmathes/chatterbox/internal/store"
	"github.com/tmathes/chatterbox/internal/testutil"
)

func Test_queueMessage(t *testing.T) {
	t.Run("successful queue", func(t *testing.T) {
		c := &Client{
			send: make(chan *ServerMessage, 1),
			log:  testutil.TestLogger(t),
		}

		res := c.queueMessage(&ServerMessage{})
		assert.True(t, res, "expected queueMessage to return true when channel is not full")

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg, "expected a message to be sent to the client")
		default:
			t.Error("expected a message to be sent to the client, but none was sent")
		}
	})
	t.Run("channel full", func(t *testing.T) {
		c := &Client{
			send: make(chan *ServerMessage, 1),
			log:  testutil.TestLogger(t),
		}

		c.send <- &ServerMessage{} // Pre-fill the send channel to simulate a full channel
		res := c.queueMessage(&ServerMessage{})
		assert.False(t, res, "expected queueMessage to return false when channel is full")
	})
}

func Test_stopClient(t *testing.T) {
	c := &Client{
		stop: make(chan struct{}),
	}

	c.stopClient()

	select {
	case <-c.stop:
		// Channel is closed as expected
	default:
		t.Error("expected stop channel to be closed")
	}

	// a second stop must not panic
	c.stopClient()
}

func TestNewClient(t *testing.T) {
	hub := newTestChatHub(t, &store.MockChatRepository{}, &stats.MockStatsUpdater{})

	c := NewClient(nil, hub, testutil.TestLogger(t))
	assert.NotEmpty(t, c.id, "expected a connection id to be assigned")
	assert.NotNil(t, c.session, "expected a session to be created")
	assert.False(t, c.session.CanSend(), "expected new session to be unauthenticated")
	assert.Equal(t, 256, cap(c.send), "expected buffered send channel")

	c2 := NewClient(nil, hub, testutil.TestLogger(t))
	assert.NotEqual(t, c.id, c2.id, "expected connection ids to be unique")
}
