package dto

import (
	"time"

	"github.com/google/uuid"

	"ai-studynotes-be/pkg/studygen"
)

type NoteResponse struct {
	Id            uuid.UUID            `json:"id"`
	FolderId      *uuid.UUID           `json:"folder_id"`
	Title         string               `json:"title"`
	Summary       string               `json:"summary"`
	Content       string               `json:"content"`
	Transcript    string               `json:"transcript,omitempty"`
	SourceType    string               `json:"source_type"`
	SourceURL     *string              `json:"source_url,omitempty"`
	Tags          []string             `json:"tags"`
	KeyPoints     []string             `json:"key_points"`
	Quiz          []studygen.QuizItem  `json:"quiz"`
	Flashcards    []studygen.Flashcard `json:"flashcards"`
	PodcastScript string               `json:"podcast_script,omitempty"`
	Table         *studygen.TableData  `json:"table,omitempty"`

	IsProcessing       bool    `json:"is_processing"`
	ProcessingProgress int     `json:"processing_progress"`
	ProcessingMessage  string  `json:"processing_message,omitempty"`
	ProcessingError    *string `json:"processing_error,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NoteListItem is the trimmed shape for list views: no transcript, no
// generated study payloads.
type NoteListItem struct {
	Id                 uuid.UUID  `json:"id"`
	FolderId           *uuid.UUID `json:"folder_id"`
	Title              string     `json:"title"`
	Summary            string     `json:"summary"`
	SourceType         string     `json:"source_type"`
	Tags               []string   `json:"tags"`
	IsProcessing       bool       `json:"is_processing"`
	ProcessingProgress int        `json:"processing_progress"`
	CreatedAt          time.Time  `json:"created_at"`
}

type CreateNoteRequest struct {
	Title    string     `json:"title" validate:"required"`
	Content  string     `json:"content"`
	Tags     []string   `json:"tags"`
	FolderId *uuid.UUID `json:"folder_id"`
}

type UpdateNoteRequest struct {
	Id       uuid.UUID
	Title    *string    `json:"title"`
	Content  *string    `json:"content"`
	Tags     []string   `json:"tags"`
	FolderId *uuid.UUID `json:"folder_id"`
}

type MoveNoteRequest struct {
	Id       uuid.UUID
	FolderId *uuid.UUID `json:"folder_id"`
}

type SearchNotesRequest struct {
	Query    string `json:"query" validate:"required"`
	Semantic bool   `json:"semantic"`
	Limit    int    `json:"limit"`
}

type SearchNoteResult struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Snippet    string    `json:"snippet"`
	Similarity float64   `json:"similarity,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AdditionalQuizRequest asks for Count extra questions. Zero means the
// service default; the merged list is capped at 10 regardless.
type AdditionalQuizRequest struct {
	Count int `json:"count" validate:"omitempty,min=1,max=10"`
}

type AdditionalQuizResponse struct {
	Quiz []studygen.QuizItem `json:"quiz"`
}

type AdditionalFlashcardsRequest struct {
	Count int `json:"count" validate:"omitempty,min=1,max=10"`
}

type AdditionalFlashcardsResponse struct {
	Flashcards []studygen.Flashcard `json:"flashcards"`
}
