package dto

import (
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

type UserProfile struct {
	Id           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Credits      int       `json:"credits"`
	IsSubscribed bool      `json:"is_subscribed"`
	TotalXp      int       `json:"total_xp"`
}

type UpdateProfileRequest struct {
	FullName       *string `json:"full_name"`
	LearningGoal   *string `json:"learning_goal"`
	StudentType    *string `json:"student_type"`
	Struggle       *string `json:"struggle"`
	DesiredOutcome *string `json:"desired_outcome"`
	Obstacles      *string `json:"obstacles"`
}
