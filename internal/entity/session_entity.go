package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

const DefaultSessionType = "voice_meditation"

// MeditationSession is one meditation attempt. It is a passive status
// record: completion just rewrites the fields, re-completion included.
type MeditationSession struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	DurationMin int
	SessionType string
	Status      SessionStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Rating      *int
	Notes       *string
}
