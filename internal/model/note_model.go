package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Note struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	FolderId   *uuid.UUID `gorm:"type:uuid;index"`
	Title      string     `gorm:"type:varchar(255);not null"`
	Summary    string     `gorm:"type:text"`
	Content    string     `gorm:"type:text"`
	Transcript string     `gorm:"type:text"`
	SourceType string     `gorm:"type:varchar(50);not null;index"`
	SourceURL  *string    `gorm:"type:text"`
	Tags       datatypes.JSON

	KeyPoints     datatypes.JSON
	Quiz          datatypes.JSON
	Flashcards    datatypes.JSON
	PodcastScript string         `gorm:"type:text"`
	TableData     datatypes.JSON `gorm:"column:table_data"`
	TotalTokens   int            `gorm:"default:0"`

	IsProcessing       bool    `gorm:"default:false;index"`
	ProcessingProgress int     `gorm:"default:0"`
	ProcessingMessage  string  `gorm:"type:varchar(255)"`
	ProcessingError    *string `gorm:"type:text"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}
