package store

import "errors"

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrDuplicateKey         = errors.New("already exists")
	ErrInvalidTransition    = errors.New("invalid job status transition")
	ErrJobAlreadyTerminated = errors.New("job already reached a terminal state")
)
