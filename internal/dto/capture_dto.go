package dto

import (
	"github.com/google/uuid"
)

// CaptureAudioRequest accompanies a multipart audio upload.
type CaptureAudioRequest struct {
	DurationSeconds float64    `json:"duration_seconds" validate:"required"`
	FolderId        *uuid.UUID `json:"folder_id"`
}

type CaptureLinkRequest struct {
	URL      string     `json:"url" validate:"required,url"`
	FolderId *uuid.UUID `json:"folder_id"`
}

// CaptureTextRequest covers both pasted text and extracted document text.
type CaptureTextRequest struct {
	Text     string     `json:"text" validate:"required"`
	Filename string     `json:"filename"`
	FolderId *uuid.UUID `json:"folder_id"`
}

// CaptureResponse is returned immediately; generation continues in the
// background and progress is observable on the note and the job.
type CaptureResponse struct {
	NoteId uuid.UUID `json:"note_id"`
	JobId  uuid.UUID `json:"job_id"`
}

// PublishProcessNoteMessage is the payload on the processing topic.
type PublishProcessNoteMessage struct {
	NoteId     uuid.UUID `json:"note_id"`
	JobId      uuid.UUID `json:"job_id"`
	UserId     uuid.UUID `json:"user_id"`
	EntryPoint string    `json:"entry_point"`
	// Text is the raw material: transcript-pending audio jobs carry the
	// uploaded file path instead.
	Text      string `json:"text,omitempty"`
	AudioPath string `json:"audio_path,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// PublishEmbedNoteMessage is the payload on the embedding topic.
type PublishEmbedNoteMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}
