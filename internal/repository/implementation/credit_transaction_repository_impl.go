package implementation

import (
	"context"
	"time"

	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/model"
	"ai-studynotes-be/internal/repository/contract"
	"ai-studynotes-be/internal/repository/specification"

	"gorm.io/gorm"
)

type CreditTransactionRepositoryImpl struct {
	db *gorm.DB
}

func NewCreditTransactionRepository(db *gorm.DB) contract.CreditTransactionRepository {
	return &CreditTransactionRepositoryImpl{db: db}
}

func (r *CreditTransactionRepositoryImpl) Create(ctx context.Context, txn *entity.CreditTransaction) error {
	m := &model.CreditTransaction{
		Id:        txn.Id,
		UserId:    txn.UserId,
		NoteId:    txn.NoteId,
		Amount:    txn.Amount,
		Reason:    txn.Reason,
		CreatedAt: txn.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	txn.Id = m.Id
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	return nil
}

func (r *CreditTransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error) {
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	var models []*model.CreditTransaction
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CreditTransaction, len(models))
	for i, m := range models {
		entities[i] = &entity.CreditTransaction{
			Id:        m.Id,
			UserId:    m.UserId,
			NoteId:    m.NoteId,
			Amount:    m.Amount,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
		}
	}
	return entities, nil
}
