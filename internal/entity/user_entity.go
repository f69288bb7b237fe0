package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash *string
	FullName     string

	// Free-tier generations remaining. Subscribed users are never decremented.
	Credits      int
	IsSubscribed bool

	// Onboarding personalization, all optional.
	LearningGoal   *string
	StudentType    *string
	Struggle       *string
	DesiredOutcome *string
	Obstacles      *string

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type XpProfile struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TotalXp   int
	CreatedAt time.Time
	UpdatedAt *time.Time
}
