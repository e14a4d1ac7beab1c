package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Campaign is an advertisement spot eligible for insertion into a
// newscast timeline.
type Campaign struct {
	gorm.Model
	ID       uuid.UUID `gorm:"primaryKey;"`
	Name     string    `gorm:"not null"`
	Script   string
	AudioURL *string
	Active   bool `gorm:"not null;default:true;index"`
	Priority int  `gorm:"not null;default:0"`
	Plays    int  `gorm:"not null;default:0"`
}

type CampaignList []Campaign

func (c Campaign) String() string {
	val, _ := json.Marshal(c)
	return string(val)
}
