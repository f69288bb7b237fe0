package contract

import (
	"context"

	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredNoteEmbedding wraps NoteEmbedding with its similarity score
type ScoredNoteEmbedding struct {
	Embedding  *entity.NoteEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type NoteEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.NoteEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.NoteEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error
	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NoteEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns embeddings with cosine similarity scores,
	// scoped to the user's live notes and filtered by threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*ScoredNoteEmbedding, error)
}
