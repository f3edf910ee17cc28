package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Domain event codes published to the bus.
const (
	TypeSessionStarted   = "SESSION_STARTED"
	TypeSessionCompleted = "SESSION_COMPLETED"
	TypeCallStarted      = "CALL_STARTED"
	TypeCallEnded        = "CALL_ENDED"
	TypeTranscriptStored = "TRANSCRIPT_STORED"
)

func NewSessionStarted(sessionID, userID string, durationMin int) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"user_id":      userID,
			"duration_min": durationMin,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionCompleted(sessionID, userID string) Event {
	return BaseEvent{
		Type: TypeSessionCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		},
		OccurredAt: time.Now(),
	}
}

func NewCallEvent(eventType, vapiCallID string) Event {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"vapi_call_id": vapiCallID,
		},
		OccurredAt: time.Now(),
	}
}
