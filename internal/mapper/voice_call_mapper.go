package mapper

import (
	"encoding/json"

	"voice-meditation-be/internal/entity"
	"voice-meditation-be/internal/model"

	"gorm.io/datatypes"
)

type VoiceCallMapper struct{}

func NewVoiceCallMapper() *VoiceCallMapper {
	return &VoiceCallMapper{}
}

func (m *VoiceCallMapper) ToEntity(c *model.VoiceCall) *entity.VoiceCall {
	if c == nil {
		return nil
	}
	var metadata map[string]interface{}
	if len(c.Metadata) > 0 {
		// Malformed stored metadata is returned as nil rather than failing the read.
		_ = json.Unmarshal(c.Metadata, &metadata)
	}
	return &entity.VoiceCall{
		Id:          c.Id,
		VapiCallId:  c.VapiCallId,
		UserId:      c.UserId,
		StartedAt:   c.StartedAt,
		EndedAt:     c.EndedAt,
		DurationSec: c.DurationSec,
		Summary:     c.Summary,
		Transcript:  c.Transcript,
		Intent:      c.Intent,
		Metadata:    metadata,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m *VoiceCallMapper) ToModel(c *entity.VoiceCall) *model.VoiceCall {
	if c == nil {
		return nil
	}
	var metadata datatypes.JSON
	if c.Metadata != nil {
		if raw, err := json.Marshal(c.Metadata); err == nil {
			metadata = raw
		}
	}
	return &model.VoiceCall{
		Id:          c.Id,
		VapiCallId:  c.VapiCallId,
		UserId:      c.UserId,
		StartedAt:   c.StartedAt,
		EndedAt:     c.EndedAt,
		DurationSec: c.DurationSec,
		Summary:     c.Summary,
		Transcript:  c.Transcript,
		Intent:      c.Intent,
		Metadata:    metadata,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
