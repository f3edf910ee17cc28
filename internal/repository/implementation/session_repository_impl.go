package implementation

import (
	"context"
	"errors"
	"time"

	"voice-meditation-be/internal/entity"
	"voice-meditation-be/internal/mapper"
	"voice-meditation-be/internal/model"
	"voice-meditation-be/internal/repository/contract"
	"voice-meditation-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.MeditationSession) error {
	modelSession := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(modelSession).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(modelSession)
	return nil
}

func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MeditationSession, error) {
	var modelSession model.MeditationSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&modelSession).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelSession), nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MeditationSession, error) {
	var modelSessions []*model.MeditationSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&modelSessions).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(modelSessions), nil
}

func (r *SessionRepositoryImpl) Complete(ctx context.Context, sessionID, userID uuid.UUID, rating *int, notes *string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.MeditationSession{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(map[string]interface{}{
			"status":       string(entity.SessionStatusCompleted),
			"completed_at": now,
			"rating":       rating,
			"notes":        notes,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
