package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/virafm/radiocast/internal/store/model"
)

// LocalStrategy runs job bodies in-process, each as a detached
// goroutine. The dispatching request's context is not inherited: a
// client disconnect must not abort a job already accepted.
type LocalStrategy struct {
	runner *Runner
	log    *zap.SugaredLogger
}

// Make sure we conform to ExecutionStrategy interface
var _ ExecutionStrategy = (*LocalStrategy)(nil)

func NewLocalStrategy(runner *Runner) *LocalStrategy {
	return &LocalStrategy{
		runner: runner,
		log:    zap.S().Named("dispatch"),
	}
}

func (s *LocalStrategy) Dispatch(ctx context.Context, job model.Job) error {
	if _, err := s.runner.registry.Executor(job.Type); err != nil {
		return err
	}

	go func() {
		if err := s.runner.Run(context.Background(), job); err != nil {
			s.log.Debugw("detached job finished with error", "job", job.ID, "error", err)
		}
	}()
	return nil
}
