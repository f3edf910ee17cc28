package service

import (
	"context"
	"errors"

	"voice-meditation-be/internal/dto"
	"voice-meditation-be/internal/repository/specification"
	"voice-meditation-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ErrProfileMissing surfaces as an internal error: a verified principal
// without a profile row is a data inconsistency, not a client mistake.
var ErrProfileMissing = errors.New("profile row missing for principal")

const recentSessionLimit = 10

type IStatsService interface {
	GetUserStats(ctx context.Context, userID uuid.UUID) (*dto.UserStatsResponse, error)
}

type statsService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewStatsService(uowFactory unitofwork.RepositoryFactory) IStatsService {
	return &statsService{uowFactory: uowFactory}
}

func (s *statsService) GetUserStats(ctx context.Context, userID uuid.UUID) (*dto.UserStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	profile, err := uow.ProfileRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileMissing
	}

	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userID},
		specification.OrderBy{Field: "started_at", Desc: true},
		specification.Limit{Count: recentSessionLimit},
	)
	if err != nil {
		return nil, err
	}

	recent := make([]dto.RecentSession, 0, len(sessions))
	for _, session := range sessions {
		recent = append(recent, dto.RecentSession{
			Id:          session.Id,
			DurationMin: session.DurationMin,
			StartedAt:   session.StartedAt,
			CompletedAt: session.CompletedAt,
			Status:      string(session.Status),
			Rating:      session.Rating,
		})
	}

	return &dto.UserStatsResponse{
		Profile: dto.ProfileStats{
			Email:                  profile.Email,
			Name:                   profile.Name,
			TotalSessions:          profile.TotalSessions,
			TotalMeditationTimeSec: profile.TotalMeditationTimeSec,
			LastSessionAt:          profile.LastSessionAt,
			CreatedAt:              profile.CreatedAt,
		},
		RecentSessions: recent,
	}, nil
}
