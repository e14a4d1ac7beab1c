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

type Job interface {
	List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	Create(ctx context.Context, job model.Job) (*model.Job, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg, errKind *string) (*model.Job, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int, message string) (*model.Job, error)
	SetResult(ctx context.Context, id uuid.UUID, result []byte) (*model.Job, error)
	CountByStatus(ctx context.Context, jobType string, statuses []string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(db *gorm.DB) Job {
	return &JobStore{db: db}
}

func (s *JobStore) List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error) {
	var jobs model.JobList
	tx := s.getDB(ctx).Model(&jobs)

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

	result := tx.Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}
	return jobs, nil
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	result := s.getDB(ctx).First(&job, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &job, nil
}

func (s *JobStore) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}
	result := s.getDB(ctx).Clauses(clause.Returning{}).Create(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &job, nil
}

// UpdateStatus moves a job through its lifecycle. The current status is
// read and the transition validated inside a transaction, so a finished
// job can never be resurrected by a racing writer.
func (s *JobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg, errKind *string) (*model.Job, error) {
	var job model.Job

	err := s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		if job.IsTerminal() {
			return ErrJobAlreadyTerminated
		}
		if !job.CanTransitionTo(status) {
			return ErrInvalidTransition
		}

		now := time.Now()
		job.Status = status
		switch status {
		case model.JobStatusProcessing:
			job.StartedAt = &now
		case model.JobStatusCompleted:
			job.Progress = 100
			job.CompletedAt = &now
		case model.JobStatusFailed, model.JobStatusCancelled:
			job.CompletedAt = &now
		}
		if errMsg != nil {
			job.Error = *errMsg
		}
		if errKind != nil {
			job.ErrorKind = *errKind
		}

		return tx.Model(&job).
			Select("status", "progress", "error", "error_kind", "started_at", "completed_at").
			Updates(&job).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateProgress advances the progress gauge of a running job. Progress
// on a terminal job is silently dropped so late heartbeats from a
// finished executor cannot dirty the record.
func (s *JobStore) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, message string) (*model.Job, error) {
	var job model.Job

	err := s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		if job.IsTerminal() {
			return nil
		}

		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
		// progress never moves backwards; a stale heartbeat keeps the
		// message but not the lower value
		if progress < job.Progress {
			progress = job.Progress
		}

		job.Progress = progress
		job.ProgressMessage = message
		return tx.Model(&job).
			Select("progress", "progress_message").
			Updates(&job).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobStore) SetResult(ctx context.Context, id uuid.UUID, result []byte) (*model.Job, error) {
	var job model.Job
	if err := s.getDB(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	job.Result = result
	if err := s.getDB(ctx).Model(&job).Select("result").Updates(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobStore) CountByStatus(ctx context.Context, jobType string, statuses []string) (int64, error) {
	var count int64
	tx := s.getDB(ctx).Model(&model.Job{}).Where("status IN ?", statuses)
	if jobType != "" {
		tx = tx.Where("type = ?", jobType)
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *JobStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Unscoped().Delete(&model.Job{}, "id = ?", id.String())
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *JobStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
