package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateFolderRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateFolderRequest struct {
	Id   uuid.UUID
	Name string `json:"name" validate:"required"`
}

type FolderResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NoteCount int64     `json:"note_count"`
	CreatedAt time.Time `json:"created_at"`
}
