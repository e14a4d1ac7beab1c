package model

import (
	"time"

	"github.com/google/uuid"
)

// Usage operation constants
const (
	UsageOperationHumanize = "humanize"
	UsageOperationTTS      = "tts"
)

// TokenUsage records the billable units consumed by one external call.
// For humanization the unit is tokens, for speech synthesis characters.
type TokenUsage struct {
	ID        uuid.UUID `gorm:"primaryKey;"`
	JobID     *uuid.UUID
	Operation string `gorm:"not null;index"`
	Provider  string `gorm:"not null"`
	Units     int64  `gorm:"not null"`
	CostUSD   float64
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

type TokenUsageList []TokenUsage
