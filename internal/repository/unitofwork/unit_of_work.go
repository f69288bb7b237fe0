package unitofwork

import (
	"context"

	"ai-studynotes-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	FolderRepository() contract.FolderRepository
	NoteRepository() contract.NoteRepository
	NoteEmbeddingRepository() contract.NoteEmbeddingRepository
	XpProfileRepository() contract.XpProfileRepository
	CreditTransactionRepository() contract.CreditTransactionRepository
}
