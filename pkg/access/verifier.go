package access

import (
	"context"
	"errors"
	"time"

	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/repository/specification"
	"ai-studynotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var ErrNoCredits = errors.New("no generations remaining")

// Verifier handles generation access checks and credit consumption.
type Verifier struct{}

func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyCanGenerate checks that the user may start a generation. Subscribed
// users always pass; free users need at least one credit. Read-only: nothing
// is consumed until the pipeline succeeds.
func (v *Verifier) VerifyCanGenerate(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}
	if user.IsSubscribed {
		return nil
	}
	if user.Credits <= 0 {
		return ErrNoCredits
	}
	return nil
}

// ConsumeCredit decrements one credit and records the ledger row. Called only
// after a successful generation; subscribed users are never charged. A
// concurrent race that drained the balance mid-pipeline is tolerated: the
// note stays, the ledger just records nothing.
func (v *Verifier) ConsumeCredit(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, noteId uuid.UUID) error {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil || user.IsSubscribed {
		return nil
	}

	if err := uow.UserRepository().DecrementCredits(ctx, userId, 1); err != nil {
		return nil
	}

	nid := noteId
	return uow.CreditTransactionRepository().Create(ctx, &entity.CreditTransaction{
		Id:        uuid.New(),
		UserId:    userId,
		NoteId:    &nid,
		Amount:    -1,
		Reason:    "note_generation",
		CreatedAt: time.Now(),
	})
}
