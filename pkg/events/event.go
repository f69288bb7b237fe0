package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NOTE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used across the system.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes.
const (
	TypeNoteCreated   = "NOTE_CREATED"
	TypeNoteCompleted = "NOTE_COMPLETED"
	TypeNoteFailed    = "NOTE_FAILED"
	TypeXpAwarded     = "XP_AWARDED"
)

// NoteCreated carries the referral-tracking side effect of note creation.
// Downstream consumers (referral service) subscribe to this; the publisher
// never blocks note creation on it.
func NoteCreated(noteID, userID uuid.UUID, title string, sourceType string) BaseEvent {
	return BaseEvent{
		Type: TypeNoteCreated,
		Data: map[string]interface{}{
			"note_id":     noteID,
			"user_id":     userID,
			"title":       title,
			"source_type": sourceType,
		},
		OccurredAt: time.Now(),
	}
}

func NoteCompleted(noteID, userID uuid.UUID, title string, totalTokens int) BaseEvent {
	return BaseEvent{
		Type: TypeNoteCompleted,
		Data: map[string]interface{}{
			"note_id":      noteID,
			"user_id":      userID,
			"title":        title,
			"total_tokens": totalTokens,
		},
		OccurredAt: time.Now(),
	}
}

func NoteFailed(noteID, userID uuid.UUID, reason string) BaseEvent {
	return BaseEvent{
		Type: TypeNoteFailed,
		Data: map[string]interface{}{
			"note_id": noteID,
			"user_id": userID,
			"reason":  reason,
		},
		OccurredAt: time.Now(),
	}
}

func XpAwarded(userID uuid.UUID, amount int, source string) BaseEvent {
	return BaseEvent{
		Type: TypeXpAwarded,
		Data: map[string]interface{}{
			"user_id": userID,
			"amount":  amount,
			"source":  source,
		},
		OccurredAt: time.Now(),
	}
}
