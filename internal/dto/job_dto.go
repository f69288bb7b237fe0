package dto

import (
	"time"

	"github.com/google/uuid"
)

type JobResponse struct {
	Id        uuid.UUID `json:"id"`
	NoteId    uuid.UUID `json:"note_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteProgressEvent is pushed over the websocket channel while a note is
// being processed.
type NoteProgressEvent struct {
	NoteId   uuid.UUID `json:"note_id"`
	UserId   uuid.UUID `json:"user_id"`
	Progress int       `json:"progress"`
	Message  string    `json:"message"`
	Status   string    `json:"status"` // processing | completed | error
	Error    *string   `json:"error,omitempty"`
}
