package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"voice-meditation-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookEvent(t *testing.T, eventType string, data interface{}) *dto.VapiWebhookEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &dto.VapiWebhookEvent{Type: eventType, Data: raw}
}

func TestWebhookService_CallStarted(t *testing.T) {
	factory := newFakeFactory()
	svc := NewWebhookService(factory, nil, "", nil, noopLogger{})
	owner := uuid.New()

	event := webhookEvent(t, dto.EventCallStarted, dto.CallStartedData{
		Id:        "call_1",
		StartedAt: "2025-06-01T10:00:00.000Z",
		Metadata:  map[string]interface{}{"intent": "sleep", "locale": "en", "user_id": owner.String()},
	})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	call := factory.uow.calls.calls["call_1"]
	require.NotNil(t, call)
	require.NotNil(t, call.StartedAt)
	assert.Equal(t, 2025, call.StartedAt.Year())
	require.NotNil(t, call.Intent)
	assert.Equal(t, "sleep", *call.Intent)
	require.NotNil(t, call.UserId)
	assert.Equal(t, owner, *call.UserId)

	t.Run("duplicate delivery upserts", func(t *testing.T) {
		require.NoError(t, svc.HandleEvent(context.Background(), event))
		assert.Equal(t, 2, factory.uow.calls.upserts)
		assert.Len(t, factory.uow.calls.calls, 1)
	})

	t.Run("missing start time is tolerated", func(t *testing.T) {
		evt := webhookEvent(t, dto.EventCallStarted, dto.CallStartedData{Id: "call_2"})
		require.NoError(t, svc.HandleEvent(context.Background(), evt))
		assert.Nil(t, factory.uow.calls.calls["call_2"].StartedAt)
	})

	t.Run("unparseable start time is an error", func(t *testing.T) {
		evt := webhookEvent(t, dto.EventCallStarted, dto.CallStartedData{
			Id:        "call_3",
			StartedAt: "yesterday",
		})
		assert.Error(t, svc.HandleEvent(context.Background(), evt))
	})
}

func TestWebhookService_CallEnded(t *testing.T) {
	factory := newFakeFactory()
	svc := NewWebhookService(factory, nil, "", nil, noopLogger{})

	start := webhookEvent(t, dto.EventCallStarted, dto.CallStartedData{
		Id:        "call_1",
		StartedAt: "2025-06-01T10:00:00Z",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), start))

	t.Run("computes whole-second duration", func(t *testing.T) {
		summary := "short session"
		end := webhookEvent(t, dto.EventCallEnded, dto.CallEndedData{
			Id:        "call_1",
			StartedAt: "2025-06-01T10:00:00Z",
			EndedAt:   "2025-06-01T10:00:05.900Z",
			Summary:   &summary,
		})
		require.NoError(t, svc.HandleEvent(context.Background(), end))

		call := factory.uow.calls.calls["call_1"]
		assert.Equal(t, 5, call.DurationSec)
		require.NotNil(t, call.Summary)
		assert.Equal(t, "short session", *call.Summary)
		require.NotNil(t, call.EndedAt)
	})

	t.Run("negative interval clamps to zero", func(t *testing.T) {
		end := webhookEvent(t, dto.EventCallEnded, dto.CallEndedData{
			Id:        "call_1",
			StartedAt: "2025-06-01T10:00:10Z",
			EndedAt:   "2025-06-01T10:00:00Z",
		})
		require.NoError(t, svc.HandleEvent(context.Background(), end))
		assert.Equal(t, 0, factory.uow.calls.calls["call_1"].DurationSec)
	})

	t.Run("unknown call id is a silent no-op", func(t *testing.T) {
		end := webhookEvent(t, dto.EventCallEnded, dto.CallEndedData{
			Id:        "never_started",
			StartedAt: "2025-06-01T10:00:00Z",
			EndedAt:   "2025-06-01T10:01:00Z",
		})
		require.NoError(t, svc.HandleEvent(context.Background(), end))
		assert.NotContains(t, factory.uow.calls.calls, "never_started")
	})

	t.Run("invalid timestamps fail ingest", func(t *testing.T) {
		end := webhookEvent(t, dto.EventCallEnded, dto.CallEndedData{
			Id:        "call_1",
			StartedAt: "bad",
			EndedAt:   "2025-06-01T10:01:00Z",
		})
		assert.Error(t, svc.HandleEvent(context.Background(), end))
	})
}

func TestWebhookService_TranscriptAvailable(t *testing.T) {
	factory := newFakeFactory()
	svc := NewWebhookService(factory, nil, "", nil, noopLogger{})

	start := webhookEvent(t, dto.EventCallStarted, dto.CallStartedData{Id: "call_1"})
	require.NoError(t, svc.HandleEvent(context.Background(), start))

	transcript := webhookEvent(t, dto.EventTranscriptAvailable, dto.TranscriptAvailableData{
		CallId:     "call_1",
		Transcript: "breathe in... breathe out...",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), transcript))

	call := factory.uow.calls.calls["call_1"]
	require.NotNil(t, call.Transcript)
	assert.Equal(t, "breathe in... breathe out...", *call.Transcript)
}

func TestWebhookService_UnknownType(t *testing.T) {
	factory := newFakeFactory()
	svc := NewWebhookService(factory, nil, "", nil, noopLogger{})

	event := &dto.VapiWebhookEvent{Type: "call.mystery", Data: json.RawMessage(`{"id":"x"}`)}
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, factory.uow.calls.calls)
}

func TestWebhookService_RelayEnvelopeCarriesOwner(t *testing.T) {
	factory := newFakeFactory()
	publisher := &capturingPublisher{}
	svc := NewWebhookService(factory, publisher, "call_events", nil, noopLogger{})
	owner := uuid.New()

	start := webhookEvent(t, dto.EventCallStarted, dto.CallStartedData{
		Id:       "call_1",
		Metadata: map[string]interface{}{"user_id": owner.String()},
	})
	require.NoError(t, svc.HandleEvent(context.Background(), start))

	transcript := webhookEvent(t, dto.EventTranscriptAvailable, dto.TranscriptAvailableData{
		CallId:     "call_1",
		Transcript: "just for the owner",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), transcript))

	payloads := publisher.published()
	require.Len(t, payloads, 2)
	for _, payload := range payloads {
		var envelope dto.CallEventEnvelope
		require.NoError(t, json.Unmarshal(payload, &envelope))
		assert.Equal(t, owner, envelope.UserId)
	}
}

func TestWebhookService_OwnerlessEventsAreNotRelayed(t *testing.T) {
	factory := newFakeFactory()
	publisher := &capturingPublisher{}
	svc := NewWebhookService(factory, publisher, "call_events", nil, noopLogger{})

	// No user_id in metadata: persisted, but never pushed to browsers.
	start := webhookEvent(t, dto.EventCallStarted, dto.CallStartedData{Id: "call_2"})
	require.NoError(t, svc.HandleEvent(context.Background(), start))

	end := webhookEvent(t, dto.EventCallEnded, dto.CallEndedData{
		Id:        "call_2",
		StartedAt: "2025-06-01T10:00:00Z",
		EndedAt:   "2025-06-01T10:01:00Z",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), end))

	require.NotNil(t, factory.uow.calls.calls["call_2"])
	assert.Empty(t, publisher.published())
}

func TestParseProviderTime(t *testing.T) {
	withMillis, err := parseProviderTime("2025-06-01T10:00:00.123Z")
	require.NoError(t, err)
	assert.Equal(t, 123*int(time.Millisecond), withMillis.Nanosecond())

	plain, err := parseProviderTime("2025-06-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 0, plain.Nanosecond())
}
