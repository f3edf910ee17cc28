package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"voice-meditation-be/internal/dto"
	"voice-meditation-be/internal/entity"
	"voice-meditation-be/internal/pkg/logger"
	"voice-meditation-be/internal/repository/specification"
	"voice-meditation-be/internal/repository/unitofwork"
	"voice-meditation-be/pkg/events"
	pktNats "voice-meditation-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IWebhookService interface {
	HandleEvent(ctx context.Context, event *dto.VapiWebhookEvent) error
}

type webhookService struct {
	uowFactory     unitofwork.RepositoryFactory
	pubSub         message.Publisher
	topicName      string
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	pubSub message.Publisher,
	topicName string,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IWebhookService {
	return &webhookService{
		uowFactory:     uowFactory,
		pubSub:         pubSub,
		topicName:      topicName,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// HandleEvent ingests one provider callback. Delivery is at-least-once and
// possibly reordered: only call.started upserts, so a call.ended arriving
// first finds no row and silently no-ops. Unrecognized types are dropped
// without error.
func (s *webhookService) HandleEvent(ctx context.Context, event *dto.VapiWebhookEvent) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	switch event.Type {
	case dto.EventCallStarted:
		var data dto.CallStartedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}

		var startedAt *time.Time
		if data.StartedAt != "" {
			t, err := parseProviderTime(data.StartedAt)
			if err != nil {
				return err
			}
			startedAt = &t
		}

		owner := extractUserID(data.Metadata)
		call := &entity.VoiceCall{
			Id:         uuid.New(),
			VapiCallId: data.Id,
			UserId:     owner,
			StartedAt:  startedAt,
			Intent:     extractIntent(data.Metadata),
			Metadata:   data.Metadata,
		}
		if err := uow.VoiceCallRepository().UpsertOnCallStart(ctx, call); err != nil {
			return err
		}
		s.afterIngest(ctx, event, events.TypeCallStarted, data.Id, owner)

	case dto.EventCallEnded:
		var data dto.CallEndedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}

		started, err := parseProviderTime(data.StartedAt)
		if err != nil {
			return err
		}
		ended, err := parseProviderTime(data.EndedAt)
		if err != nil {
			return err
		}

		// Clamped at zero: the provider occasionally delivers end stamps
		// earlier than start stamps.
		durationSec := int(ended.Sub(started) / time.Second)
		if durationSec < 0 {
			durationSec = 0
		}

		if err := uow.VoiceCallRepository().UpdateOnCallEnd(ctx, data.Id, &ended, durationSec, data.Summary); err != nil {
			return err
		}
		s.afterIngest(ctx, event, events.TypeCallEnded, data.Id, s.resolveOwner(ctx, uow, data.Id))

	case dto.EventTranscriptAvailable:
		var data dto.TranscriptAvailableData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}

		if err := uow.VoiceCallRepository().UpdateTranscript(ctx, data.CallId, data.Transcript); err != nil {
			return err
		}
		s.afterIngest(ctx, event, events.TypeTranscriptStored, data.CallId, s.resolveOwner(ctx, uow, data.CallId))
	}

	return nil
}

// afterIngest fans the persisted event out: to the in-process relay topic
// for live browser delivery, and to the NATS bus. Both are best effort and
// never fail the ingest. Live relay is scoped to the call owner; an event
// whose owner cannot be resolved is persisted but not relayed.
func (s *webhookService) afterIngest(ctx context.Context, event *dto.VapiWebhookEvent, eventType, callID string, owner *uuid.UUID) {
	if s.pubSub != nil && owner != nil {
		payload, err := json.Marshal(dto.CallEventEnvelope{
			UserId: *owner,
			Type:   event.Type,
			Data:   event.Data,
		})
		if err == nil {
			msg := message.NewMessage(watermill.NewUUID(), payload)
			if err := s.pubSub.Publish(s.topicName, msg); err != nil {
				s.logger.Warn("WebhookService", "Failed to publish relay message", map[string]interface{}{
					"error":   err.Error(),
					"call_id": callID,
				})
			}
		}
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewCallEvent(eventType, callID)); err != nil {
			log.Printf("[WARN] Failed to publish %s event: %v", eventType, err)
		}
	}
}

// resolveOwner reads the stored call row to find who the event belongs to.
// Events that arrive before call.started have no row and thus no owner.
func (s *webhookService) resolveOwner(ctx context.Context, uow unitofwork.UnitOfWork, vapiCallID string) *uuid.UUID {
	call, err := uow.VoiceCallRepository().FindOne(ctx, specification.ByVapiCallID{CallID: vapiCallID})
	if err != nil || call == nil {
		return nil
	}
	return call.UserId
}

func extractIntent(metadata map[string]interface{}) *string {
	if metadata == nil {
		return nil
	}
	if intent, ok := metadata["intent"].(string); ok {
		return &intent
	}
	return nil
}

// extractUserID pulls the owner the client tagged the call with.
func extractUserID(metadata map[string]interface{}) *uuid.UUID {
	if metadata == nil {
		return nil
	}
	raw, ok := metadata["user_id"].(string)
	if !ok {
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &userID
}

func parseProviderTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Parse(time.RFC3339, value)
	}
	return t, nil
}
