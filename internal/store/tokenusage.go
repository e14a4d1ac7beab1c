package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/virafm/radiocast/internal/store/model"
	"gorm.io/gorm"
)

type TokenUsage interface {
	Record(ctx context.Context, usage model.TokenUsage) (*model.TokenUsage, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) (model.TokenUsageList, error)
	TotalCost(ctx context.Context, operation string) (float64, error)
}

type TokenUsageStore struct {
	db *gorm.DB
}

// Make sure we conform to TokenUsage interface
var _ TokenUsage = (*TokenUsageStore)(nil)

func NewTokenUsageStore(db *gorm.DB) TokenUsage {
	return &TokenUsageStore{db: db}
}

func (s *TokenUsageStore) Record(ctx context.Context, usage model.TokenUsage) (*model.TokenUsage, error) {
	if usage.ID == (uuid.UUID{}) {
		usage.ID = uuid.New()
	}
	result := s.getDB(ctx).Create(&usage)
	if result.Error != nil {
		return nil, result.Error
	}
	return &usage, nil
}

func (s *TokenUsageStore) ListByJob(ctx context.Context, jobID uuid.UUID) (model.TokenUsageList, error) {
	var usages model.TokenUsageList
	result := s.getDB(ctx).Model(&usages).Where("job_id = ?", jobID).Order("created_at").Find(&usages)
	if result.Error != nil {
		return nil, result.Error
	}
	return usages, nil
}

func (s *TokenUsageStore) TotalCost(ctx context.Context, operation string) (float64, error) {
	var total float64
	tx := s.getDB(ctx).Model(&model.TokenUsage{})
	if operation != "" {
		tx = tx.Where("operation = ?", operation)
	}
	if err := tx.Select("COALESCE(SUM(cost_usd), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *TokenUsageStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
