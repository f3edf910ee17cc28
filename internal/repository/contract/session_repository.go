package contract

import (
	"context"

	"voice-meditation-be/internal/entity"
	"voice-meditation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.MeditationSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MeditationSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MeditationSession, error)

	// Complete marks the session completed, filtering on BOTH the session id
	// and the owning user id in the same update. Returns the number of rows
	// matched; zero covers both "absent" and "not owned".
	Complete(ctx context.Context, sessionID, userID uuid.UUID, rating *int, notes *string) (int64, error)
}
