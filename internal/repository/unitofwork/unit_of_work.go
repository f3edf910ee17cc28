package unitofwork

import (
	"context"

	"voice-meditation-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProfileRepository() contract.ProfileRepository
	SessionRepository() contract.SessionRepository
	VoiceCallRepository() contract.VoiceCallRepository
}
