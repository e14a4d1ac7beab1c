package v1alpha1

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType identifies the kind of background work a job carries out.
type JobType string

const (
	JobTypeNewscast       JobType = "newscast"
	JobTypeUrgentNewscast JobType = "urgent-newscast"
	JobTypeFinalize       JobType = "finalize"
	JobTypeScraping       JobType = "scraping"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Job is the status report returned for any background job.
type Job struct {
	Id              uuid.UUID       `json:"id"`
	Type            JobType         `json:"type"`
	Status          JobStatus       `json:"status"`
	Progress        int             `json:"progress"`
	ProgressMessage string          `json:"progressMessage,omitempty"`
	Error           string          `json:"error,omitempty"`
	ErrorKind       string          `json:"errorKind,omitempty"`
	Result          json.RawMessage `json:"result,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}

// JobList is returned by the list endpoint.
type JobList []Job

// NewscastConfig carries the knobs for a newscast generation job.
type NewscastConfig struct {
	Title                 string   `json:"title,omitempty"`
	Region                string   `json:"region" validate:"required"`
	RadioName             string   `json:"radioName,omitempty"`
	Voice                 string   `json:"voice,omitempty" validate:"omitempty,voice"`
	TargetDurationMinutes int      `json:"targetDurationMinutes,omitempty" validate:"omitempty,gte=1,lte=60"`
	Categories            []string `json:"categories,omitempty"`
	NewsUrls              []string `json:"newsUrls,omitempty" validate:"omitempty,dive,url"`
	MaxItems              int      `json:"maxItems,omitempty" validate:"omitempty,gte=1,lte=50"`
	IncludeAds            bool     `json:"includeAds,omitempty"`
	Humanize              bool     `json:"humanize,omitempty"`
	SpeakingRateAdjust    float64  `json:"speakingRateAdjust,omitempty" validate:"omitempty,gte=-50,lte=100"`
}

// FinalizeConfig carries the input of an audio finalization job.
type FinalizeConfig struct {
	NewscastId uuid.UUID `json:"newscastId" validate:"required"`
}

// CreateJobRequest is the generic job submission body. Config is opaque
// to the dispatcher and interpreted by the executor registered for Type.
type CreateJobRequest struct {
	Type   JobType         `json:"type" validate:"required"`
	Config json.RawMessage `json:"config"`
}

// CreateNewscastJobRequest starts an asynchronous newscast generation job.
type CreateNewscastJobRequest struct {
	Config NewscastConfig `json:"config"`
}

// CreateScrapingJobRequest starts an asynchronous scraping job over the
// given source URLs.
type CreateScrapingJobRequest struct {
	Urls      []string `json:"urls" validate:"required,min=1,dive,url"`
	BatchSize int      `json:"batchSize,omitempty" validate:"omitempty,gte=1,lte=20"`
}

// Newscast is the finished product of a completed newscast job.
type Newscast struct {
	Id              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Voice           string    `json:"voice"`
	Script          string    `json:"script,omitempty"`
	AudioUrl        string    `json:"audioUrl,omitempty"`
	DurationSeconds float64   `json:"durationSeconds"`
	SegmentCount    int       `json:"segmentCount"`
	SkippedCount    int       `json:"skippedCount"`
	FailedCount     int       `json:"failedCount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ScrapingResult summarizes a completed scraping job.
type ScrapingResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// NewscastJobResult is stored on a completed newscast generation job.
type NewscastJobResult struct {
	NewscastId   uuid.UUID `json:"newscastId"`
	TokensUsed   int64     `json:"tokensUsed"`
	Cost         float64   `json:"cost"`
	SkippedCount int       `json:"skippedCount"`
}

// FinalizeJobResult is stored on a completed audio finalization job.
type FinalizeJobResult struct {
	NewscastId      uuid.UUID `json:"newscastId"`
	AudioUrl        string    `json:"audioUrl"`
	DurationSeconds float64   `json:"durationSeconds"`
	SegmentCount    int       `json:"segmentCount"`
	SkippedCount    int       `json:"skippedCount"`
}

// NewsItem is a scraped article as exposed by the API.
type NewsItem struct {
	Id          uuid.UUID  `json:"id"`
	Url         string     `json:"url"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Urgency     string     `json:"urgency"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Voice describes one selectable synthesis voice.
type Voice struct {
	Id             string  `json:"id"`
	Gender         string  `json:"gender"`
	WordsPerMinute float64 `json:"wordsPerMinute"`
}

// VoiceList is returned by the voices endpoint.
type VoiceList []Voice

// Error is the generic error body returned by all endpoints.
type Error struct {
	Message   string  `json:"message"`
	RequestId *string `json:"requestId,omitempty"`
}
