package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the per-user aggregate row. The API creates it on first
// sign-in and otherwise only reads it; the session totals are maintained
// by a database trigger, never by application code.
type Profile struct {
	Id                     uuid.UUID
	Email                  string
	Name                   string
	TotalSessions          int
	TotalMeditationTimeSec int
	LastSessionAt          *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type UserRefreshToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
