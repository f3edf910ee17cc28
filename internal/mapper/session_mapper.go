package mapper

import (
	"voice-meditation-be/internal/entity"
	"voice-meditation-be/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.MeditationSession) *entity.MeditationSession {
	if s == nil {
		return nil
	}
	return &entity.MeditationSession{
		Id:          s.Id,
		UserId:      s.UserId,
		DurationMin: s.DurationMin,
		SessionType: s.SessionType,
		Status:      entity.SessionStatus(s.Status),
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		Rating:      s.Rating,
		Notes:       s.Notes,
	}
}

func (m *SessionMapper) ToModel(s *entity.MeditationSession) *model.MeditationSession {
	if s == nil {
		return nil
	}
	return &model.MeditationSession{
		Id:          s.Id,
		UserId:      s.UserId,
		DurationMin: s.DurationMin,
		SessionType: s.SessionType,
		Status:      string(s.Status),
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		Rating:      s.Rating,
		Notes:       s.Notes,
	}
}

func (m *SessionMapper) ToEntities(models []*model.MeditationSession) []*entity.MeditationSession {
	entities := make([]*entity.MeditationSession, 0, len(models))
	for _, s := range models {
		entities = append(entities, m.ToEntity(s))
	}
	return entities
}
