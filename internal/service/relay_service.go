package service

import (
	"context"
	"encoding/json"

	"voice-meditation-be/internal/dto"
	"voice-meditation-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// CallEventDelivery pushes a relayed provider event to the owning user's
// connected browsers. Implemented by the websocket hub.
type CallEventDelivery interface {
	BroadcastEventTo(userID uuid.UUID, eventType string, data json.RawMessage)
}

type IRelayService interface {
	Consume(ctx context.Context) error
}

// relayService subscribes to the in-process call-event topic fed by the
// webhook ingester and forwards each event to the hub. Ingest never waits
// on delivery.
type relayService struct {
	subscriber message.Subscriber
	topicName  string
	delivery   CallEventDelivery
	logger     logger.ILogger
}

func NewRelayService(
	subscriber message.Subscriber,
	topicName string,
	delivery CallEventDelivery,
	log logger.ILogger,
) IRelayService {
	return &relayService{
		subscriber: subscriber,
		topicName:  topicName,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *relayService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *relayService) processMessage(msg *message.Message) {
	var envelope dto.CallEventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		s.logger.Warn("RelayService", "Dropping malformed relay message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads are not retriable
		return
	}
	if envelope.UserId == uuid.Nil {
		s.logger.Warn("RelayService", "Dropping relay message without an owner", map[string]interface{}{
			"type": envelope.Type,
		})
		msg.Ack()
		return
	}

	s.delivery.BroadcastEventTo(envelope.UserId, envelope.Type, envelope.Data)
	msg.Ack()
}
