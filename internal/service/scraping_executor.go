package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/dispatch"
	"github.com/virafm/radiocast/internal/scraper"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/store/model"
)

// ScrapingExecutor runs a scraping job over the configured source URLs
// and stores the extracted articles.
type ScrapingExecutor struct {
	store  store.Store
	region string
	opts   []scraper.Option
	log    *zap.SugaredLogger
}

var _ dispatch.Executor = (*ScrapingExecutor)(nil)

// NewScrapingExecutor builds the executor. opts carry the deployment's
// scraper tuning (batch size, delay, http client); per-job config may
// still override the batch size.
func NewScrapingExecutor(store store.Store, region string, opts ...scraper.Option) *ScrapingExecutor {
	return &ScrapingExecutor{
		store:  store,
		region: region,
		opts:   opts,
		log:    zap.S().Named("scraping_executor"),
	}
}

func (e *ScrapingExecutor) Execute(ctx context.Context, job model.Job) error {
	var cfg api.CreateScrapingJobRequest
	if err := json.Unmarshal(job.Config, &cfg); err != nil {
		return NewErrInvalidRequest(fmt.Sprintf("malformed scraping config: %v", err))
	}
	if len(cfg.Urls) == 0 {
		return NewErrInvalidRequest("scraping requires at least one url")
	}

	opts := append([]scraper.Option{}, e.opts...)
	if cfg.BatchSize > 0 {
		opts = append(opts, scraper.WithBatchSize(cfg.BatchSize))
	}
	s := scraper.New(e.store.NewsItem(), opts...)

	outcome, err := s.Run(ctx, cfg.Urls, e.region, func(done, total int) {
		reportProgress(ctx, e.store.Job(), e.log, job.ID, (100*done)/total,
			fmt.Sprintf("Procesadas %d/%d fuentes", done, total))
	})
	if err != nil {
		return err
	}
	if outcome.Processed == 0 && outcome.Failed > 0 {
		return NewErrDependencyFailed("scraping", fmt.Errorf("all %d sources failed", outcome.Failed))
	}

	result, err := json.Marshal(api.ScrapingResult{
		Processed: outcome.Processed,
		Failed:    outcome.Failed,
	})
	if err != nil {
		return err
	}

	_, err = e.store.Job().SetResult(ctx, job.ID, result)
	return err
}
