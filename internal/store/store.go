package store

import (
	"context"

	"github.com/virafm/radiocast/internal/store/model"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Job() Job
	Newscast() Newscast
	NewsItem() NewsItem
	Campaign() Campaign
	TokenUsage() TokenUsage
	Statistics(ctx context.Context) (model.JobStats, error)
	Close() error
}

type DataStore struct {
	db         *gorm.DB
	job        Job
	newscast   Newscast
	newsItem   NewsItem
	campaign   Campaign
	tokenUsage TokenUsage
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		job:        NewJobStore(db),
		newscast:   NewNewscastStore(db),
		newsItem:   NewNewsItemStore(db),
		campaign:   NewCampaignStore(db),
		tokenUsage: NewTokenUsageStore(db),
		db:         db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) Newscast() Newscast {
	return s.newscast
}

func (s *DataStore) NewsItem() NewsItem {
	return s.newsItem
}

func (s *DataStore) Campaign() Campaign {
	return s.campaign
}

func (s *DataStore) TokenUsage() TokenUsage {
	return s.tokenUsage
}

func (s *DataStore) Statistics(ctx context.Context) (model.JobStats, error) {
	jobs, err := s.Job().List(ctx, nil, nil)
	if err != nil {
		return model.JobStats{}, err
	}
	return model.NewJobStats(jobs), nil
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
