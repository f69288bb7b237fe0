package contract

import (
	"context"

	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	// DecrementCredits does a guarded single-statement decrement so two
	// concurrent generations cannot take the balance below zero.
	DecrementCredits(ctx context.Context, userId uuid.UUID, amount int) error
}

type XpProfileRepository interface {
	// AddXp upserts the per-user row and increments the total atomically.
	AddXp(ctx context.Context, userId uuid.UUID, amount int) error
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.XpProfile, error)
}

type CreditTransactionRepository interface {
	Create(ctx context.Context, txn *entity.CreditTransaction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error)
}
