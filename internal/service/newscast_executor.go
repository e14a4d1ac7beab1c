package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/dispatch"
	"github.com/virafm/radiocast/internal/service/mappers"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/store/model"
	"github.com/virafm/radiocast/internal/timeline"
	"github.com/virafm/radiocast/internal/tts"
	"github.com/virafm/radiocast/pkg/metrics"
)

// NewscastExecutor turns a newscast job into an assembled timeline and
// a draft newscast record. It serves both the regular and the urgent
// job type; the urgent variant restricts selection to high urgency news
// and drops advertisement breaks.
type NewscastExecutor struct {
	store        store.Store
	assembler    *timeline.Assembler
	defaultVoice string
	log          *zap.SugaredLogger
}

var _ dispatch.Executor = (*NewscastExecutor)(nil)

// NewNewscastExecutor builds the executor. defaultVoice is used for
// newscasts whose config does not pin a voice; empty falls back to the
// catalog default.
func NewNewscastExecutor(store store.Store, assembler *timeline.Assembler, defaultVoice string) *NewscastExecutor {
	if defaultVoice == "" {
		defaultVoice = tts.DefaultVoice
	}
	return &NewscastExecutor{
		store:        store,
		assembler:    assembler,
		defaultVoice: defaultVoice,
		log:          zap.S().Named("newscast_executor"),
	}
}

func (e *NewscastExecutor) Execute(ctx context.Context, job model.Job) error {
	var cfg api.NewscastConfig
	if err := json.Unmarshal(job.Config, &cfg); err != nil {
		return NewErrInvalidRequest(fmt.Sprintf("malformed newscast config: %v", err))
	}

	reportProgress(ctx, e.store.Job(), e.log, job.ID, 10, "Buscando noticias")

	items, err := e.loadItems(ctx, job.Type, cfg)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return NewErrInvalidRequest("no news items available for the requested selection")
	}

	voice := e.resolveVoice(cfg)

	params := mappers.NewscastConfigToParams(cfg)
	params.Items = items
	params.Voice = voice
	params.JobID = &job.ID
	params.RequesterID = "job:" + job.ID.String()
	if job.Type == model.JobTypeUrgentNewscast {
		params.IncludeAds = false
	}
	// News items occupy the 20..85 band of the overall progress.
	params.Progress = func(current, total int, message string) {
		reportProgress(ctx, e.store.Job(), e.log, job.ID, 20+(65*current)/total, message)
	}

	res, err := e.assembler.Assemble(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, timeline.ErrNoNewsItems):
			return NewErrInvalidRequest(err.Error())
		case errors.Is(err, timeline.ErrAllItemsFailed):
			return NewErrDependencyFailed("humanization", err)
		}
		return err
	}

	reportProgress(ctx, e.store.Job(), e.log, job.ID, 90, "Guardando noticiero")

	rawTimeline, err := json.Marshal(res.Timeline)
	if err != nil {
		return err
	}

	newscast, err := e.store.Newscast().Create(ctx, model.Newscast{
		ID:              uuid.New(),
		JobID:           &job.ID,
		Title:           newscastTitle(cfg),
		Voice:           voice,
		Script:          res.Timeline.Script(),
		Timeline:        rawTimeline,
		DurationSeconds: res.Timeline.TotalDurationSeconds,
		SegmentCount:    len(res.Timeline.Segments),
		SkippedCount:    res.SkippedCount,
		Status:          model.NewscastStatusDraft,
	})
	if err != nil {
		return err
	}

	if res.SkippedCount > 0 {
		metrics.IncreaseSegmentsSkippedMetric(job.Type, res.SkippedCount)
	}

	result, err := json.Marshal(api.NewscastJobResult{
		NewscastId:   newscast.ID,
		TokensUsed:   res.TokensUsed,
		Cost:         res.Cost,
		SkippedCount: res.SkippedCount,
	})
	if err != nil {
		return err
	}

	_, err = e.store.Job().SetResult(ctx, job.ID, result)
	return err
}

func (e *NewscastExecutor) loadItems(ctx context.Context, jobType string, cfg api.NewscastConfig) (model.NewsItemList, error) {
	filter := store.NewNewsItemQueryFilter()
	if len(cfg.NewsUrls) > 0 {
		filter = filter.ByUrls(cfg.NewsUrls)
	} else if len(cfg.Categories) > 0 {
		filter = filter.ByCategories(cfg.Categories)
	}
	if jobType == model.JobTypeUrgentNewscast {
		filter = filter.ByUrgency(model.UrgencyHigh)
	}

	limit := cfg.MaxItems
	if limit <= 0 || limit > timeline.DefaultMaxItems {
		limit = timeline.DefaultMaxItems
	}
	opts := store.NewNewsItemQueryOptions().
		WithSortOrder(store.SortByUrgency).
		WithLimit(limit)

	return e.store.NewsItem().List(ctx, filter, opts)
}

func newscastTitle(cfg api.NewscastConfig) string {
	if cfg.Title != "" {
		return cfg.Title
	}
	return fmt.Sprintf("Noticiero %s %s", cfg.Region, time.Now().Format("2006-01-02 15:04"))
}

func (e *NewscastExecutor) resolveVoice(cfg api.NewscastConfig) string {
	if cfg.Voice != "" {
		return cfg.Voice
	}
	return e.defaultVoice
}

// reportProgress is best effort: heartbeats never fail a running job.
func reportProgress(ctx context.Context, jobs store.Job, log *zap.SugaredLogger, id uuid.UUID, progress int, message string) {
	if _, err := jobs.UpdateProgress(ctx, id, progress, message); err != nil {
		log.Warnw("failed to report progress", "job_id", id, "error", err)
	}
}
