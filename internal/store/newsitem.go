package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/virafm/radiocast/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NewsItem interface {
	List(ctx context.Context, filter *NewsItemQueryFilter, opts *NewsItemQueryOptions) (model.NewsItemList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.NewsItem, error)
	Upsert(ctx context.Context, item model.NewsItem) (*model.NewsItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type NewsItemStore struct {
	db *gorm.DB
}

// Make sure we conform to NewsItem interface
var _ NewsItem = (*NewsItemStore)(nil)

func NewNewsItemStore(db *gorm.DB) NewsItem {
	return &NewsItemStore{db: db}
}

func (s *NewsItemStore) List(ctx context.Context, filter *NewsItemQueryFilter, opts *NewsItemQueryOptions) (model.NewsItemList, error) {
	var items model.NewsItemList
	tx := s.getDB(ctx).Model(&items)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}
	return items, nil
}

func (s *NewsItemStore) Get(ctx context.Context, id uuid.UUID) (*model.NewsItem, error) {
	var item model.NewsItem
	result := s.getDB(ctx).First(&item, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &item, nil
}

// Upsert inserts a scraped article, refreshing content and urgency when
// the URL was seen before.
func (s *NewsItemStore) Upsert(ctx context.Context, item model.NewsItem) (*model.NewsItem, error) {
	now := time.Now()
	item.ScrapedAt = &now

	result := s.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "content", "category", "urgency", "scraped_at", "updated_at"}),
	}).Create(&item)
	if result.Error != nil {
		return nil, result.Error
	}
	return &item, nil
}

func (s *NewsItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Unscoped().Delete(&model.NewsItem{}, "id = ?", id.String())
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *NewsItemStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
