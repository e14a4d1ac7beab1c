package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Newscast status constants
const (
	NewscastStatusDraft     = "draft"
	NewscastStatusRendering = "rendering"
	NewscastStatusReady     = "ready"
)

type Newscast struct {
	gorm.Model
	ID              uuid.UUID `gorm:"primaryKey;"`
	JobID           *uuid.UUID
	Title           string `gorm:"not null"`
	Voice           string `gorm:"not null"`
	Script          string
	Timeline        RawJSON `gorm:"type:jsonb"`
	AudioURL        *string
	DurationSeconds float64
	SegmentCount    int
	SkippedCount    int
	FailedCount     int
	Status          string `gorm:"not null;default:draft;index"`
}

type NewscastList []Newscast

func (n Newscast) String() string {
	val, _ := json.Marshal(n)
	return string(val)
}
