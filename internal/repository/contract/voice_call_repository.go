package contract

import (
	"context"
	"time"

	"voice-meditation-be/internal/entity"
	"voice-meditation-be/internal/repository/specification"
)

type VoiceCallRepository interface {
	// UpsertOnCallStart inserts a call record or, on vapi_call_id conflict,
	// refreshes the start fields. Tolerates duplicate delivery of
	// call.started.
	UpsertOnCallStart(ctx context.Context, call *entity.VoiceCall) error

	// UpdateOnCallEnd sets the end fields for the matching provider call id.
	// A missing row is a silent no-op.
	UpdateOnCallEnd(ctx context.Context, vapiCallID string, endedAt *time.Time, durationSec int, summary *string) error

	// UpdateTranscript stores the transcript for the matching provider call id.
	UpdateTranscript(ctx context.Context, vapiCallID string, transcript string) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VoiceCall, error)
}
