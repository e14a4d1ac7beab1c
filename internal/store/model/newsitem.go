package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Urgency constants, in decreasing order of importance.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// UrgencyRank maps an urgency label to a sortable weight. Unknown labels
// rank below low.
func UrgencyRank(urgency string) int {
	switch urgency {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	default:
		return 0
	}
}

type NewsItem struct {
	gorm.Model
	ID          uuid.UUID `gorm:"primaryKey;"`
	URL         string    `gorm:"not null;uniqueIndex"`
	Title       string    `gorm:"not null"`
	Content     string
	Category    string `gorm:"not null;default:general;index"`
	Urgency     string `gorm:"not null;default:low;index"`
	Source      string
	PublishedAt *time.Time
	ScrapedAt   *time.Time
}

type NewsItemList []NewsItem

func (n NewsItem) String() string {
	val, _ := json.Marshal(n)
	return string(val)
}
