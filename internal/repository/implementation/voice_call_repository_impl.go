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

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoiceCallRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VoiceCallMapper
}

func NewVoiceCallRepository(db *gorm.DB) contract.VoiceCallRepository {
	return &VoiceCallRepositoryImpl{
		db:     db,
		mapper: mapper.NewVoiceCallMapper(),
	}
}

func (r *VoiceCallRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *VoiceCallRepositoryImpl) UpsertOnCallStart(ctx context.Context, call *entity.VoiceCall) error {
	modelCall := r.mapper.ToModel(call)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vapi_call_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "started_at", "intent", "metadata", "updated_at"}),
	}).Create(modelCall).Error
}

func (r *VoiceCallRepositoryImpl) UpdateOnCallEnd(ctx context.Context, vapiCallID string, endedAt *time.Time, durationSec int, summary *string) error {
	return r.db.WithContext(ctx).Model(&model.VoiceCall{}).
		Where("vapi_call_id = ?", vapiCallID).
		Updates(map[string]interface{}{
			"ended_at":     endedAt,
			"duration_sec": durationSec,
			"summary":      summary,
		}).Error
}

func (r *VoiceCallRepositoryImpl) UpdateTranscript(ctx context.Context, vapiCallID string, transcript string) error {
	return r.db.WithContext(ctx).Model(&model.VoiceCall{}).
		Where("vapi_call_id = ?", vapiCallID).
		Update("transcript", transcript).Error
}

func (r *VoiceCallRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VoiceCall, error) {
	var modelCall model.VoiceCall
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&modelCall).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelCall), nil
}
