package websocket

import (
	"testing"
	"time"

	"ai-studynotes-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type quietLogger struct{}

func (quietLogger) Debug(string, string, map[string]interface{}) {}
func (quietLogger) Info(string, string, map[string]interface{})  {}
func (quietLogger) Warn(string, string, map[string]interface{})  {}
func (quietLogger) Error(string, string, map[string]interface{}) {}
func (quietLogger) Sync() error                                  { return nil }

func registered(h *Hub, uid uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[uid])
}

func TestHubDropsStuckClientWithoutPanic(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	uid := uuid.New()
	client := &Client{Hub: h, UserID: uid, Send: make(chan []byte)}
	h.register <- client

	assert.Eventually(t, func() bool { return registered(h, uid) == 1 }, time.Second, 5*time.Millisecond)

	// Nobody reads client.Send, so the delivery falls through to the drop
	// path. The unregister handler owns the close; a second close here
	// would panic the hub goroutine.
	h.SendProgress(dto.NoteProgressEvent{UserId: uid, Progress: 40, Message: "Writing title...", Status: "processing"})

	assert.Eventually(t, func() bool { return registered(h, uid) == 0 }, time.Second, 5*time.Millisecond)

	// Delivery to a user with no connections is a silent no-op.
	h.SendProgress(dto.NoteProgressEvent{UserId: uid, Progress: 50, Message: "Summarizing...", Status: "processing"})
}

func TestHubDeliversToRegisteredClient(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	uid := uuid.New()
	client := &Client{Hub: h, UserID: uid, Send: make(chan []byte, 8)}
	h.register <- client

	assert.Eventually(t, func() bool { return registered(h, uid) == 1 }, time.Second, 5*time.Millisecond)

	h.Send(uid, "xp_awarded", map[string]interface{}{"amount": 20})

	select {
	case data := <-client.Send:
		assert.Contains(t, string(data), `"xp_awarded"`)
		assert.Contains(t, string(data), `"amount":20`)
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}
