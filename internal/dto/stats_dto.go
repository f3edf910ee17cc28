package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileStats struct {
	Email                  string     `json:"email"`
	Name                   string     `json:"name"`
	TotalSessions          int        `json:"total_sessions"`
	TotalMeditationTimeSec int        `json:"total_meditation_time_sec"`
	LastSessionAt          *time.Time `json:"last_session_at"`
	CreatedAt              time.Time  `json:"created_at"`
}

type RecentSession struct {
	Id          uuid.UUID  `json:"id"`
	DurationMin int        `json:"duration_min"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Status      string     `json:"status"`
	Rating      *int       `json:"rating"`
}

type UserStatsResponse struct {
	Profile        ProfileStats    `json:"profile"`
	RecentSessions []RecentSession `json:"recent_sessions"`
}
