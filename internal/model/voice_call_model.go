package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type VoiceCall struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VapiCallId  string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	UserId      *uuid.UUID `gorm:"type:uuid;index"`
	StartedAt   *time.Time
	EndedAt     *time.Time
	DurationSec int     `gorm:"default:0"`
	Summary     *string `gorm:"type:text"`
	Transcript  *string `gorm:"type:text"`
	Intent      *string `gorm:"type:varchar(100)"`
	Metadata    datatypes.JSON
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (VoiceCall) TableName() string {
	return "voice_calls"
}
