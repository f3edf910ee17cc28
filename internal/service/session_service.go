package service

import (
	"context"
	"errors"
	"log"
	"time"

	"voice-meditation-be/internal/dto"
	"voice-meditation-be/internal/entity"
	"voice-meditation-be/internal/repository/specification"
	"voice-meditation-be/internal/repository/unitofwork"
	"voice-meditation-be/pkg/events"
	pktNats "voice-meditation-be/pkg/nats"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration  = errors.New("duration is required and must be at least 1 minute")
	ErrSessionIDMissing = errors.New("session id is required")
	ErrSessionNotFound  = errors.New("session not found or access denied")
)

type ISessionService interface {
	Start(ctx context.Context, userID uuid.UUID, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error)
	Complete(ctx context.Context, userID uuid.UUID, req *dto.CompleteSessionRequest) (*dto.CompleteSessionResponse, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewSessionService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (s *sessionService) Start(ctx context.Context, userID uuid.UUID, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error) {
	if req.DurationMin < 1 {
		return nil, ErrInvalidDuration
	}

	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = entity.DefaultSessionType
	}

	session := &entity.MeditationSession{
		Id:          uuid.New(),
		UserId:      userID,
		DurationMin: req.DurationMin,
		SessionType: sessionType,
		Status:      entity.SessionStatusActive,
		StartedAt:   time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewSessionStarted(session.Id.String(), userID.String(), session.DurationMin))

	return &dto.StartSessionResponse{
		SessionId:   session.Id,
		UserId:      userID,
		DurationMin: session.DurationMin,
		StartedAt:   session.StartedAt,
	}, nil
}

func (s *sessionService) Complete(ctx context.Context, userID uuid.UUID, req *dto.CompleteSessionRequest) (*dto.CompleteSessionResponse, error) {
	if req.SessionId == "" {
		return nil, ErrSessionIDMissing
	}
	sessionID, err := uuid.Parse(req.SessionId)
	if err != nil {
		return nil, ErrSessionIDMissing
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// The update filters on id AND owner; zero rows means absent or foreign,
	// deliberately indistinguishable. Re-completing just rewrites the fields.
	rows, err := uow.SessionRepository().Complete(ctx, sessionID, userID, req.Rating, req.Notes)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrSessionNotFound
	}

	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionID},
		specification.OwnedBy{UserID: userID},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	s.publish(ctx, events.NewSessionCompleted(session.Id.String(), userID.String()))

	completedAt := time.Now()
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}

	return &dto.CompleteSessionResponse{
		SessionId:   session.Id,
		Status:      string(entity.SessionStatusCompleted),
		CompletedAt: completedAt,
		DurationMin: session.DurationMin,
	}, nil
}

func (s *sessionService) publish(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", event.EventType(), err)
	}
}
