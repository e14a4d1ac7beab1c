package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/virafm/radiocast/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Campaign interface {
	ListActive(ctx context.Context) (model.CampaignList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	Create(ctx context.Context, campaign model.Campaign) (*model.Campaign, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	IncrementPlays(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CampaignStore struct {
	db *gorm.DB
}

// Make sure we conform to Campaign interface
var _ Campaign = (*CampaignStore)(nil)

func NewCampaignStore(db *gorm.DB) Campaign {
	return &CampaignStore{db: db}
}

func (s *CampaignStore) ListActive(ctx context.Context) (model.CampaignList, error) {
	var campaigns model.CampaignList
	result := s.getDB(ctx).Model(&campaigns).Where("active IS TRUE").Order("priority DESC, created_at").Find(&campaigns)
	if result.Error != nil {
		return nil, result.Error
	}
	return campaigns, nil
}

func (s *CampaignStore) Get(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	var campaign model.Campaign
	result := s.getDB(ctx).First(&campaign, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &campaign, nil
}

func (s *CampaignStore) Create(ctx context.Context, campaign model.Campaign) (*model.Campaign, error) {
	result := s.getDB(ctx).Clauses(clause.Returning{}).Create(&campaign)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &campaign, nil
}

func (s *CampaignStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := s.getDB(ctx).Model(&model.Campaign{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *CampaignStore) IncrementPlays(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Model(&model.Campaign{}).Where("id = ?", id).Update("plays", gorm.Expr("plays + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *CampaignStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Unscoped().Delete(&model.Campaign{}, "id = ?", id.String())
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *CampaignStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
