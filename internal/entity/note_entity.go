package entity

import (
	"time"

	"github.com/google/uuid"

	"ai-studynotes-be/pkg/studygen"
)

type Note struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	FolderId   *uuid.UUID
	Title      string
	Summary    string
	Content    string
	Transcript string
	SourceType studygen.SourceType
	SourceURL  *string
	Tags       []string

	KeyPoints     []string
	Quiz          []studygen.QuizItem
	Flashcards    []studygen.Flashcard
	PodcastScript string
	Table         *studygen.TableData
	TotalTokens   int

	// Processing sub-state. While IsProcessing is true the study fields above
	// are placeholders and Progress/Message describe the pipeline position.
	IsProcessing       bool
	ProcessingProgress int
	ProcessingMessage  string
	ProcessingError    *string

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type NoteEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	NoteId         uuid.UUID
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
