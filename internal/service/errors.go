package service

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrResourceNotFound wraps lookups for ids that do not exist.
type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrJobNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "job")
}

func NewErrNewscastNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "newscast")
}

func (e *ErrResourceNotFound) ErrorKind() string {
	return "not_found"
}

// ErrInvalidRequest rejects input before any job state is created.
type ErrInvalidRequest struct {
	error
}

func NewErrInvalidRequest(message string) *ErrInvalidRequest {
	return &ErrInvalidRequest{fmt.Errorf("bad request: %s", message)}
}

func NewErrInvalidJobType(jobType string) *ErrInvalidRequest {
	return NewErrInvalidRequest(fmt.Sprintf("unsupported job type %q", jobType))
}

func (e *ErrInvalidRequest) ErrorKind() string {
	return "validation"
}

// ErrJobNotCancellable means the job already started processing or
// reached a terminal state.
type ErrJobNotCancellable struct {
	error
}

func NewErrJobNotCancellable(id uuid.UUID) *ErrJobNotCancellable {
	return &ErrJobNotCancellable{fmt.Errorf("job %s already started or reached a terminal state", id)}
}

func (e *ErrJobNotCancellable) ErrorKind() string {
	return "conflict"
}

// ErrDependencyFailed marks failures of external collaborators, such as
// the humanizer or the synthesizer.
type ErrDependencyFailed struct {
	error
}

func NewErrDependencyFailed(operation string, err error) *ErrDependencyFailed {
	return &ErrDependencyFailed{fmt.Errorf("%s failed: %w", operation, err)}
}

func (e *ErrDependencyFailed) ErrorKind() string {
	return "dependency"
}
