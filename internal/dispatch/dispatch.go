// Package dispatch decouples job creation from job execution. A job is
// persisted as pending, then handed to the configured execution
// strategy: run in-process as a detached goroutine, or forwarded to a
// separate worker over HTTP. The creating call never waits for the
// work itself.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/virafm/radiocast/internal/store/model"
)

// Executor runs the body of one job type. It receives the persisted
// job record and reports progress through the runner, not directly to
// the caller.
type Executor interface {
	Execute(ctx context.Context, job model.Job) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, job model.Job) error

func (f ExecutorFunc) Execute(ctx context.Context, job model.Job) error {
	return f(ctx, job)
}

// Registry maps job types to their executors. Registration happens at
// startup; lookups are read-only afterwards.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

func NewRegistry() *Registry {
	return &Registry{executors: map[string]Executor{}}
}

func (r *Registry) Register(jobType string, executor Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[jobType] = executor
}

func (r *Registry) Executor(jobType string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[jobType]
	if !ok {
		return nil, errors.Errorf("no executor registered for job type %q", jobType)
	}
	return executor, nil
}

// ExecutionStrategy triggers a job's body. Implementations confirm the
// hand-off only; completion is observed through the job record.
type ExecutionStrategy interface {
	Dispatch(ctx context.Context, job model.Job) error
}

// kinder is implemented by errors that classify themselves for the
// persisted error_kind column.
type kinder interface {
	ErrorKind() string
}

// KindOf extracts the error classification, defaulting to internal.
func KindOf(err error) string {
	var k kinder
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return "internal"
}

func panicError(r any) error {
	return fmt.Errorf("job panicked: %v", r)
}
