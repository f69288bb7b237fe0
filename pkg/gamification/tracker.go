package gamification

import (
	"context"

	"ai-studynotes-be/internal/repository/unitofwork"
	"ai-studynotes-be/pkg/studygen"

	"github.com/google/uuid"
)

// XP awards keyed by capture entry point, not by the stored source type.
// Pasted text lands in the document bucket for storage but earns its own
// higher award.
const (
	XpAudio     = 20
	XpLink      = 20
	XpDocument  = 10
	XpTextPaste = 50
)

// EntryPoint is how the user started the capture.
type EntryPoint string

const (
	EntryAudio    EntryPoint = "audio"
	EntryLink     EntryPoint = "link"
	EntryDocument EntryPoint = "document"
	EntryText     EntryPoint = "text"
)

// AmountFor returns the XP award for a capture entry point.
func AmountFor(entry EntryPoint) int {
	switch entry {
	case EntryAudio:
		return XpAudio
	case EntryLink:
		return XpLink
	case EntryDocument:
		return XpDocument
	case EntryText:
		return XpTextPaste
	default:
		return 0
	}
}

// SourceTypeFor maps a capture entry point to the persisted source type.
func SourceTypeFor(entry EntryPoint) studygen.SourceType {
	switch entry {
	case EntryAudio:
		return studygen.SourceAudio
	case EntryLink:
		return studygen.SourceYoutube
	default:
		return studygen.SourceDocument
	}
}

// Tracker awards XP after a note completes processing.
type Tracker struct{}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Award(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, entry EntryPoint) (int, error) {
	amount := AmountFor(entry)
	if amount == 0 {
		return 0, nil
	}
	if err := uow.XpProfileRepository().AddXp(ctx, userId, amount); err != nil {
		return 0, err
	}
	return amount, nil
}
