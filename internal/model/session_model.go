package model

import (
	"time"

	"github.com/google/uuid"
)

type MeditationSession struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	DurationMin int       `gorm:"not null"`
	SessionType string    `gorm:"type:varchar(50);not null;default:'voice_meditation'"`
	Status      string    `gorm:"type:varchar(20);not null;default:'active'"`
	StartedAt   time.Time `gorm:"autoCreateTime;index"`
	CompletedAt *time.Time
	Rating      *int
	Notes       *string `gorm:"type:text"`
}

func (MeditationSession) TableName() string {
	return "user_sessions"
}
