package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"voice-meditation-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfile(factory *fakeFactory, userID uuid.UUID) *entity.Profile {
	profile := &entity.Profile{
		Id:        userID,
		Email:     "user@example.com",
		Name:      "user@example.com",
		CreatedAt: time.Now(),
	}
	factory.uow.profiles.profiles[userID] = profile
	return profile
}

func TestStatsService_GetUserStats(t *testing.T) {
	t.Run("missing profile is an internal inconsistency", func(t *testing.T) {
		factory := newFakeFactory()
		svc := NewStatsService(factory)

		_, err := svc.GetUserStats(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrProfileMissing)
	})

	t.Run("fresh profile yields zero totals and empty list", func(t *testing.T) {
		factory := newFakeFactory()
		svc := NewStatsService(factory)
		userID := uuid.New()
		seedProfile(factory, userID)

		stats, err := svc.GetUserStats(context.Background(), userID)
		require.NoError(t, err)

		assert.Equal(t, 0, stats.Profile.TotalSessions)
		assert.Equal(t, 0, stats.Profile.TotalMeditationTimeSec)
		assert.Nil(t, stats.Profile.LastSessionAt)

		// The list must encode as [] rather than null.
		raw, err := json.Marshal(stats)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"recent_sessions":[]`)
	})

	t.Run("returns ten newest sessions, newest first", func(t *testing.T) {
		factory := newFakeFactory()
		svc := NewStatsService(factory)
		userID := uuid.New()
		profile := seedProfile(factory, userID)
		profile.TotalSessions = 12
		profile.TotalMeditationTimeSec = 7200

		base := time.Now().Add(-24 * time.Hour)
		for i := 0; i < 12; i++ {
			id := uuid.New()
			factory.uow.sessions.sessions[id] = &entity.MeditationSession{
				Id:          id,
				UserId:      userID,
				DurationMin: 10,
				Status:      entity.SessionStatusCompleted,
				StartedAt:   base.Add(time.Duration(i) * time.Hour),
			}
		}
		// Someone else's session must never leak in.
		foreignID := uuid.New()
		factory.uow.sessions.sessions[foreignID] = &entity.MeditationSession{
			Id:        foreignID,
			UserId:    uuid.New(),
			StartedAt: time.Now(),
		}

		stats, err := svc.GetUserStats(context.Background(), userID)
		require.NoError(t, err)

		require.Len(t, stats.RecentSessions, 10)
		for i := 1; i < len(stats.RecentSessions); i++ {
			assert.True(t, !stats.RecentSessions[i].StartedAt.After(stats.RecentSessions[i-1].StartedAt),
				"sessions must be ordered newest first")
		}
		for _, session := range stats.RecentSessions {
			assert.NotEqual(t, foreignID, session.Id)
		}

		assert.Equal(t, 12, stats.Profile.TotalSessions)
		assert.Equal(t, 7200, stats.Profile.TotalMeditationTimeSec)
	})
}
