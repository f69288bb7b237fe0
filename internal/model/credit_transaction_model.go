package model

import (
	"time"

	"github.com/google/uuid"
)

// CreditTransaction is an append-only ledger row. Consumption is recorded
// after successful generation; failures leave no row and no refund.
type CreditTransaction struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	NoteId    *uuid.UUID `gorm:"type:uuid;index"`
	Amount    int        `gorm:"not null"` // negative for consumption
	Reason    string     `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
