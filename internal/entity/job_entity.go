package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusTranscribing JobStatus = "transcribing"
	JobStatusGenerating   JobStatus = "generating"
	JobStatusCompleted    JobStatus = "completed"
	JobStatusError        JobStatus = "error"
)

// Job is the ephemeral background-work record shown in the processing tray.
// Jobs live only in memory and do not survive a restart; the note row is the
// durable record of the work.
type Job struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	NoteId    uuid.UUID
	Title     string
	Status    JobStatus
	Progress  int
	Message   string
	Error     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
