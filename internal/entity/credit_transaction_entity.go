package entity

import (
	"time"

	"github.com/google/uuid"
)

type CreditTransaction struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	NoteId    *uuid.UUID
	Amount    int
	Reason    string
	CreatedAt time.Time
}
