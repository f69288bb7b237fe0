package implementation

import (
	"context"
	"errors"

	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/mapper"
	"ai-studynotes-be/internal/model"
	"ai-studynotes-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type XpProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewXpProfileRepository(db *gorm.DB) contract.XpProfileRepository {
	return &XpProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *XpProfileRepositoryImpl) AddXp(ctx context.Context, userId uuid.UUID, amount int) error {
	row := &model.XpProfile{
		Id:      uuid.New(),
		UserId:  userId,
		TotalXp: amount,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"total_xp": gorm.Expr("xp_profiles.total_xp + ?", amount)}),
		}).
		Create(row).Error
}

func (r *XpProfileRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.XpProfile, error) {
	var m model.XpProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToXpProfileEntity(&m), nil
}
