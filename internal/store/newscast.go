package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/virafm/radiocast/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Newscast interface {
	List(ctx context.Context) (model.NewscastList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Newscast, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*model.Newscast, error)
	Create(ctx context.Context, newscast model.Newscast) (*model.Newscast, error)
	Update(ctx context.Context, id uuid.UUID, script, audioURL, status *string, durationSeconds *float64, segmentCount, skippedCount, failedCount *int) (*model.Newscast, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type NewscastStore struct {
	db *gorm.DB
}

// Make sure we conform to Newscast interface
var _ Newscast = (*NewscastStore)(nil)

func NewNewscastStore(db *gorm.DB) Newscast {
	return &NewscastStore{db: db}
}

func (s *NewscastStore) List(ctx context.Context) (model.NewscastList, error) {
	var newscasts model.NewscastList
	result := s.getDB(ctx).Model(&newscasts).Order("created_at DESC").Find(&newscasts)
	if result.Error != nil {
		return nil, result.Error
	}
	return newscasts, nil
}

func (s *NewscastStore) Get(ctx context.Context, id uuid.UUID) (*model.Newscast, error) {
	var newscast model.Newscast
	result := s.getDB(ctx).First(&newscast, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &newscast, nil
}

func (s *NewscastStore) GetByJobID(ctx context.Context, jobID uuid.UUID) (*model.Newscast, error) {
	var newscast model.Newscast
	result := s.getDB(ctx).First(&newscast, "job_id = ?", jobID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &newscast, nil
}

func (s *NewscastStore) Create(ctx context.Context, newscast model.Newscast) (*model.Newscast, error) {
	if newscast.Status == "" {
		newscast.Status = model.NewscastStatusDraft
	}
	result := s.getDB(ctx).Clauses(clause.Returning{}).Create(&newscast)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &newscast, nil
}

func (s *NewscastStore) Update(ctx context.Context, id uuid.UUID, script, audioURL, status *string, durationSeconds *float64, segmentCount, skippedCount, failedCount *int) (*model.Newscast, error) {
	var newscast model.Newscast
	if err := s.getDB(ctx).First(&newscast, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	selectFields := []string{}
	if script != nil {
		newscast.Script = *script
		selectFields = append(selectFields, "script")
	}
	if audioURL != nil {
		newscast.AudioURL = audioURL
		selectFields = append(selectFields, "audio_url")
	}
	if status != nil {
		newscast.Status = *status
		selectFields = append(selectFields, "status")
	}
	if durationSeconds != nil {
		newscast.DurationSeconds = *durationSeconds
		selectFields = append(selectFields, "duration_seconds")
	}
	if segmentCount != nil {
		newscast.SegmentCount = *segmentCount
		selectFields = append(selectFields, "segment_count")
	}
	if skippedCount != nil {
		newscast.SkippedCount = *skippedCount
		selectFields = append(selectFields, "skipped_count")
	}
	if failedCount != nil {
		newscast.FailedCount = *failedCount
		selectFields = append(selectFields, "failed_count")
	}

	result := s.getDB(ctx).Model(&newscast).Clauses(clause.Returning{}).Select(selectFields).Updates(&newscast)
	if result.Error != nil {
		return nil, result.Error
	}
	return &newscast, nil
}

func (s *NewscastStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Unscoped().Delete(&model.Newscast{}, "id = ?", id.String())
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *NewscastStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
