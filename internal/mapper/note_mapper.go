package mapper

import (
	"encoding/json"
	"time"

	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/model"
	"ai-studynotes-be/pkg/studygen"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	var tags []string
	unmarshalJSON(n.Tags, &tags)

	var keyPoints []string
	unmarshalJSON(n.KeyPoints, &keyPoints)

	var quiz []studygen.QuizItem
	unmarshalJSON(n.Quiz, &quiz)

	var flashcards []studygen.Flashcard
	unmarshalJSON(n.Flashcards, &flashcards)

	var table *studygen.TableData
	if len(n.TableData) > 0 {
		var t studygen.TableData
		if json.Unmarshal(n.TableData, &t) == nil && len(t.Headers) > 0 {
			table = &t
		}
	}

	return &entity.Note{
		Id:                 n.Id,
		UserId:             n.UserId,
		FolderId:           n.FolderId,
		Title:              n.Title,
		Summary:            n.Summary,
		Content:            n.Content,
		Transcript:         n.Transcript,
		SourceType:         studygen.SourceType(n.SourceType),
		SourceURL:          n.SourceURL,
		Tags:               tags,
		KeyPoints:          keyPoints,
		Quiz:               quiz,
		Flashcards:         flashcards,
		PodcastScript:      n.PodcastScript,
		Table:              table,
		TotalTokens:        n.TotalTokens,
		IsProcessing:       n.IsProcessing,
		ProcessingProgress: n.ProcessingProgress,
		ProcessingMessage:  n.ProcessingMessage,
		ProcessingError:    n.ProcessingError,
		CreatedAt:          n.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
		IsDeleted:          n.DeletedAt.Valid,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if n.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *n.DeletedAt, Valid: true}
	} else if n.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	var tableJSON datatypes.JSON
	if n.Table != nil {
		tableJSON = marshalJSON(n.Table)
	}

	return &model.Note{
		Id:                 n.Id,
		UserId:             n.UserId,
		FolderId:           n.FolderId,
		Title:              n.Title,
		Summary:            n.Summary,
		Content:            n.Content,
		Transcript:         n.Transcript,
		SourceType:         string(n.SourceType),
		SourceURL:          n.SourceURL,
		Tags:               marshalJSON(n.Tags),
		KeyPoints:          marshalJSON(n.KeyPoints),
		Quiz:               marshalJSON(n.Quiz),
		Flashcards:         marshalJSON(n.Flashcards),
		PodcastScript:      n.PodcastScript,
		TableData:          tableJSON,
		TotalTokens:        n.TotalTokens,
		IsProcessing:       n.IsProcessing,
		ProcessingProgress: n.ProcessingProgress,
		ProcessingMessage:  n.ProcessingMessage,
		ProcessingError:    n.ProcessingError,
		CreatedAt:          n.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *NoteMapper) ToModels(notes []*entity.Note) []*model.Note {
	models := make([]*model.Note, len(notes))
	for i, n := range notes {
		models[i] = m.ToModel(n)
	}
	return models
}

func marshalJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}

func unmarshalJSON(raw datatypes.JSON, out interface{}) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, out)
}
