package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNoteCompletedPayload(t *testing.T) {
	noteID, userID := uuid.New(), uuid.New()

	evt := NoteCompleted(noteID, userID, "Mitosis Explained", 700)

	assert.Equal(t, TypeNoteCompleted, evt.EventType())
	payload := evt.Payload()
	assert.Equal(t, noteID, payload["note_id"])
	assert.Equal(t, userID, payload["user_id"])
	assert.Equal(t, "Mitosis Explained", payload["title"])
	assert.Equal(t, 700, payload["total_tokens"])
	assert.False(t, evt.Timestamp().IsZero())
}

func TestXpAwardedPayload(t *testing.T) {
	userID := uuid.New()

	evt := XpAwarded(userID, 50, "text")

	assert.Equal(t, TypeXpAwarded, evt.EventType())
	assert.Equal(t, 50, evt.Payload()["amount"])
	assert.Equal(t, "text", evt.Payload()["source"])
}
