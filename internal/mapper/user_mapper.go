package mapper

import (
	"time"

	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/model"

	"gorm.io/gorm"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}

	var deletedAt *time.Time
	if u.DeletedAt.Valid {
		t := u.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		updatedAt = &t
	}

	return &entity.User{
		Id:             u.Id,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		FullName:       u.FullName,
		Credits:        u.Credits,
		IsSubscribed:   u.IsSubscribed,
		LearningGoal:   u.LearningGoal,
		StudentType:    u.StudentType,
		Struggle:       u.Struggle,
		DesiredOutcome: u.DesiredOutcome,
		Obstacles:      u.Obstacles,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      u.DeletedAt.Valid,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if u.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *u.DeletedAt, Valid: true}
	} else if u.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if u.UpdatedAt != nil {
		updatedAt = *u.UpdatedAt
	}

	return &model.User{
		Id:             u.Id,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		FullName:       u.FullName,
		Credits:        u.Credits,
		IsSubscribed:   u.IsSubscribed,
		LearningGoal:   u.LearningGoal,
		StudentType:    u.StudentType,
		Struggle:       u.Struggle,
		DesiredOutcome: u.DesiredOutcome,
		Obstacles:      u.Obstacles,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *UserMapper) ToXpProfileEntity(x *model.XpProfile) *entity.XpProfile {
	if x == nil {
		return nil
	}

	var updatedAt *time.Time
	if !x.UpdatedAt.IsZero() {
		t := x.UpdatedAt
		updatedAt = &t
	}

	return &entity.XpProfile{
		Id:        x.Id,
		UserId:    x.UserId,
		TotalXp:   x.TotalXp,
		CreatedAt: x.CreatedAt,
		UpdatedAt: updatedAt,
	}
}
