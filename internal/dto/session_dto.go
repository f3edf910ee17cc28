package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartSessionRequest struct {
	DurationMin int    `json:"duration_min"`
	SessionType string `json:"session_type"`
}

type StartSessionResponse struct {
	SessionId   uuid.UUID `json:"session_id"`
	UserId      uuid.UUID `json:"user_id"`
	DurationMin int       `json:"duration_min"`
	StartedAt   time.Time `json:"started_at"`
}

type CompleteSessionRequest struct {
	SessionId string  `json:"session_id"`
	Rating    *int    `json:"rating"`
	Notes     *string `json:"notes"`
}

type CompleteSessionResponse struct {
	SessionId   uuid.UUID `json:"session_id"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMin int       `json:"duration_min"`
}
