package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// VapiWebhookEvent is the tagged envelope the voice provider posts.
// Unrecognized types are acknowledged and dropped.
type VapiWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	EventCallStarted         = "call.started"
	EventCallEnded           = "call.ended"
	EventTranscriptAvailable = "transcript.available"
)

type CallStartedData struct {
	Id        string                 `json:"id"`
	StartedAt string                 `json:"startedAt"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type CallEndedData struct {
	Id        string  `json:"id"`
	StartedAt string  `json:"startedAt"`
	EndedAt   string  `json:"endedAt"`
	Summary   *string `json:"summary"`
}

type TranscriptAvailableData struct {
	CallId     string `json:"callId"`
	Transcript string `json:"transcript"`
}

// CallEventEnvelope is what the ingester hands to the in-process relay.
// The owner id scopes live delivery to the call owner's browsers.
type CallEventEnvelope struct {
	UserId uuid.UUID       `json:"user_id"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}
