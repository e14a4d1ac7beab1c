package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job status constants
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusCancelled  = "cancelled"
)

// Job type constants
const (
	JobTypeNewscast       = "newscast"
	JobTypeUrgentNewscast = "urgent-newscast"
	JobTypeFinalize       = "finalize"
	JobTypeScraping       = "scraping"
)

type Job struct {
	gorm.Model
	ID              uuid.UUID `gorm:"primaryKey;"`
	Type            string    `gorm:"not null;index:idx_jobs_type_status"`
	Status          string    `gorm:"not null;default:pending;index:idx_jobs_type_status"`
	Progress        int       `gorm:"not null;default:0"`
	ProgressMessage string
	Config          RawJSON `gorm:"type:jsonb"`
	Result          RawJSON `gorm:"type:jsonb"`
	Error           string
	ErrorKind       string
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

type JobList []Job

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

// IsTerminal reports whether the job reached a state it can never leave.
func (j Job) IsTerminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving the job
// from its current status to next. Terminal states accept nothing, and
// a job that started processing runs to completion or failure; it can
// only be cancelled while still pending.
func (j Job) CanTransitionTo(next string) bool {
	switch j.Status {
	case JobStatusPending:
		return next == JobStatusProcessing || next == JobStatusFailed || next == JobStatusCancelled
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}
