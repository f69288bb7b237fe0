package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteOwnedByUser struct {
	UserID uuid.UUID
}

func (s NoteOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.user_id = ?", s.UserID)
}

type ByFolderID struct {
	FolderID uuid.UUID
}

func (s ByFolderID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("folder_id = ?", s.FolderID)
}

type BySourceType struct {
	SourceType string
}

func (s BySourceType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_type = ?", s.SourceType)
}

// TitleContains is a case-insensitive substring match used by keyword search.
type TitleContains struct {
	Query string
}

func (s TitleContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title ILIKE ?", "%"+s.Query+"%")
}

type Processing struct{}

func (s Processing) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_processing = ?", true)
}
