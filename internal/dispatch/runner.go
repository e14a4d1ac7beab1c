package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/store/model"
	"github.com/virafm/radiocast/pkg/metrics"
)

// Runner drives one job through the state machine around its executor:
// processing before the body starts, completed or failed after, with
// panic recovery. Both strategies and the worker binary share it.
type Runner struct {
	jobs     store.Job
	registry *Registry
	log      *zap.SugaredLogger
}

func NewRunner(jobs store.Job, registry *Registry) *Runner {
	return &Runner{
		jobs:     jobs,
		registry: registry,
		log:      zap.S().Named("dispatch"),
	}
}

// Run executes the job body synchronously and settles the job record.
// The returned error reflects the body's outcome; the job record is
// already terminal by the time Run returns.
func (r *Runner) Run(ctx context.Context, job model.Job) (err error) {
	executor, err := r.registry.Executor(job.Type)
	if err != nil {
		r.fail(ctx, job, err)
		return err
	}

	if _, err := r.jobs.UpdateStatus(ctx, job.ID, model.JobStatusProcessing, nil, nil); err != nil {
		r.log.Errorw("failed to mark job processing", "job", job.ID, "error", err)
		return err
	}
	if _, err := r.jobs.UpdateProgress(ctx, job.ID, 0, "Iniciando procesamiento"); err != nil {
		r.log.Warnw("failed to set initial progress", "job", job.ID, "error", err)
	}

	metrics.IncreaseJobsStartedMetric(job.Type)

	defer func() {
		if rec := recover(); rec != nil {
			err = panicError(rec)
			r.log.Errorw("job panicked", "job", job.ID, "panic", rec)
			r.fail(ctx, job, err)
		}
	}()

	if err := executor.Execute(ctx, job); err != nil {
		r.fail(ctx, job, err)
		return err
	}

	if _, err := r.jobs.UpdateStatus(ctx, job.ID, model.JobStatusCompleted, nil, nil); err != nil {
		r.log.Errorw("failed to mark job completed", "job", job.ID, "error", err)
		return err
	}
	metrics.IncreaseJobsCompletedMetric(job.Type)
	r.log.Infow("job completed", "job", job.ID, "type", job.Type)
	return nil
}

func (r *Runner) fail(ctx context.Context, job model.Job, jobErr error) {
	msg := jobErr.Error()
	kind := KindOf(jobErr)
	if _, err := r.jobs.UpdateStatus(ctx, job.ID, model.JobStatusFailed, &msg, &kind); err != nil {
		r.log.Errorw("failed to mark job failed", "job", job.ID, "error", err)
	}
	metrics.IncreaseJobsFailedMetric(job.Type, kind)
	r.log.Warnw("job failed", "job", job.ID, "type", job.Type, "kind", kind, "error", jobErr)
}
