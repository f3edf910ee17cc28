package entity

import (
	"time"

	"github.com/google/uuid"
)

// VoiceCall is one provider call, keyed by the provider's call id.
// Created on call.started (upsert), updated in place afterwards. There is
// no deletion path.
type VoiceCall struct {
	Id          uuid.UUID
	VapiCallId  string
	UserId      *uuid.UUID
	StartedAt   *time.Time
	EndedAt     *time.Time
	DurationSec int
	Summary     *string
	Transcript  *string
	Intent      *string
	Metadata    map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
