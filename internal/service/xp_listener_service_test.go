package service

import (
	"context"
	"testing"
	"time"

	"ai-studynotes-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	userID    uuid.UUID
	eventType string
	data      interface{}
	calls     int
}

func (f *fakeNotifier) Send(userID uuid.UUID, eventType string, data interface{}) {
	f.userID = userID
	f.eventType = eventType
	f.data = data
	f.calls++
}

func TestXpListenerForwardsAwardToOwner(t *testing.T) {
	notifier := &fakeNotifier{}
	listener := NewXpListenerService(nil, notifier, noopLogger{}).(*xpListenerService)

	userID := uuid.New()
	evt := events.BaseEvent{
		Type: events.TypeXpAwarded,
		// Subscribed payloads arrive as generic JSON, so the user id is a string.
		Data: map[string]interface{}{
			"user_id": userID.String(),
			"amount":  float64(20),
			"source":  "audio",
		},
		OccurredAt: time.Now(),
	}

	require.NoError(t, listener.handle(context.Background(), evt))

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, userID, notifier.userID)
	assert.Equal(t, "xp_awarded", notifier.eventType)
}

func TestXpListenerDropsMalformedEvent(t *testing.T) {
	notifier := &fakeNotifier{}
	listener := NewXpListenerService(nil, notifier, noopLogger{}).(*xpListenerService)

	evt := events.BaseEvent{
		Type:       events.TypeXpAwarded,
		Data:       map[string]interface{}{"user_id": "not-a-uuid"},
		OccurredAt: time.Now(),
	}

	// Returning nil keeps the bus from redelivering a hopeless message.
	require.NoError(t, listener.handle(context.Background(), evt))
	assert.Equal(t, 0, notifier.calls)
}

func TestXpListenerWithoutBusIsNoop(t *testing.T) {
	listener := NewXpListenerService(nil, &fakeNotifier{}, noopLogger{})
	assert.NoError(t, listener.Listen())
}
