package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/dispatch"
	"github.com/virafm/radiocast/internal/service/mappers"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/store/model"
	"github.com/virafm/radiocast/pkg/metrics"
)

// JobFilter narrows job listings.
type JobFilter struct {
	Type   string
	Status string
}

// JobService creates background jobs, hands them to an execution
// strategy and reports their lifecycle back to callers.
type JobService struct {
	store    store.Store
	strategy dispatch.ExecutionStrategy
	log      *zap.SugaredLogger
}

func NewJobService(store store.Store, strategy dispatch.ExecutionStrategy) *JobService {
	return &JobService{
		store:    store,
		strategy: strategy,
		log:      zap.S().Named("job_service"),
	}
}

// CreateNewscastJob accepts both the regular and the urgent variant;
// the variant travels as the job type.
func (s *JobService) CreateNewscastJob(ctx context.Context, jobType api.JobType, cfg api.NewscastConfig) (*api.Job, error) {
	if jobType != api.JobTypeNewscast && jobType != api.JobTypeUrgentNewscast {
		return nil, NewErrInvalidJobType(string(jobType))
	}

	config, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	return s.createAndDispatch(ctx, string(jobType), config)
}

func (s *JobService) CreateFinalizeJob(ctx context.Context, cfg api.FinalizeConfig) (*api.Job, error) {
	// Reject unknown newscasts up front so the caller gets a 404
	// instead of an asynchronously failed job.
	if _, err := s.store.Newscast().Get(ctx, cfg.NewscastId); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNewscastNotFound(cfg.NewscastId)
		}
		return nil, err
	}

	config, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	return s.createAndDispatch(ctx, model.JobTypeFinalize, config)
}

func (s *JobService) CreateScrapingJob(ctx context.Context, req api.CreateScrapingJobRequest) (*api.Job, error) {
	config, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	return s.createAndDispatch(ctx, model.JobTypeScraping, config)
}

func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*api.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(id)
		}
		return nil, err
	}

	mapped := mappers.JobToApi(*job)
	return &mapped, nil
}

func (s *JobService) ListJobs(ctx context.Context, filter *JobFilter) (api.JobList, error) {
	storeFilter := store.NewJobQueryFilter()
	if filter != nil {
		if filter.Type != "" {
			storeFilter = storeFilter.ByType(filter.Type)
		}
		if filter.Status != "" {
			storeFilter = storeFilter.ByStatus(filter.Status)
		}
	}

	jobs, err := s.store.Job().List(ctx, storeFilter, store.NewJobQueryOptions().WithSortOrder(store.SortByCreatedTime))
	if err != nil {
		return nil, err
	}

	return mappers.JobListToApi(jobs), nil
}

// CancelJob withdraws a job that has not started yet. A job that is
// already processing runs to its terminal state and cannot be aborted.
func (s *JobService) CancelJob(ctx context.Context, id uuid.UUID) (*api.Job, error) {
	job, err := s.store.Job().UpdateStatus(ctx, id, model.JobStatusCancelled, nil, nil)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return nil, NewErrJobNotFound(id)
		case errors.Is(err, store.ErrJobAlreadyTerminated), errors.Is(err, store.ErrInvalidTransition):
			return nil, NewErrJobNotCancellable(id)
		default:
			return nil, err
		}
	}

	mapped := mappers.JobToApi(*job)
	return &mapped, nil
}

func (s *JobService) createAndDispatch(ctx context.Context, jobType string, config []byte) (*api.Job, error) {
	job, err := s.store.Job().Create(ctx, model.Job{
		ID:     uuid.New(),
		Type:   jobType,
		Status: model.JobStatusPending,
		Config: config,
	})
	if err != nil {
		return nil, err
	}

	if err := s.strategy.Dispatch(ctx, *job); err != nil {
		msg := err.Error()
		kind := dispatch.KindOf(err)
		if _, updateErr := s.store.Job().UpdateStatus(ctx, job.ID, model.JobStatusFailed, &msg, &kind); updateErr != nil {
			s.log.Errorw("failed to mark undispatchable job as failed", "job_id", job.ID, "error", updateErr)
		}
		return nil, err
	}

	s.updateQueueDepth(ctx, jobType)

	mapped := mappers.JobToApi(*job)
	return &mapped, nil
}

func (s *JobService) updateQueueDepth(ctx context.Context, jobType string) {
	depth, err := s.store.Job().CountByStatus(ctx, jobType, []string{model.JobStatusPending, model.JobStatusProcessing})
	if err != nil {
		s.log.Warnw("failed to count queued jobs", "job_type", jobType, "error", err)
		return
	}
	metrics.UpdateJobQueueDepthMetric(jobType, int(depth))
}
