package service

import (
	"context"
	"sync"
	"time"

	"voice-meditation-be/internal/entity"
	"voice-meditation-be/internal/repository/contract"
	"voice-meditation-be/internal/repository/specification"
	"voice-meditation-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// In-memory repository doubles. They honor the specifications the services
// actually use (ByID, OwnedBy, ByEmail, ByVapiCallID, OrderBy, Limit) by
// interpreting them directly instead of building queries.

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*entity.Profile
	tokens   map[string]*entity.UserRefreshToken // keyed by token hash
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[uuid.UUID]*entity.Profile),
		tokens:   make(map[string]*entity.UserRefreshToken),
	}
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.Id] = profile
	return nil
}

func (r *fakeProfileRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if profileMatches(p, specs) {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) CreateRefreshToken(_ context.Context, token *entity.UserRefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeProfileRepo) FindRefreshToken(_ context.Context, tokenHash string) (*entity.UserRefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenHash]
	if !ok {
		return nil, nil
	}
	return token, nil
}

func (r *fakeProfileRepo) RevokeRefreshToken(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.Id == id {
			token.Revoked = true
		}
	}
	return nil
}

func profileMatches(p *entity.Profile, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if p.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if p.Email != s.Email {
				return false
			}
		}
	}
	return true
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.MeditationSession

	createErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.MeditationSession)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.MeditationSession) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = session
	return nil
}

func (r *fakeSessionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.MeditationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if sessionMatches(s, specs) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.MeditationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.MeditationSession
	for _, s := range r.sessions {
		if sessionMatches(s, specs) {
			out = append(out, s)
		}
	}

	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok && order.Field == "started_at" && order.Desc {
			for i := 0; i < len(out); i++ {
				for j := i + 1; j < len(out); j++ {
					if out[j].StartedAt.After(out[i].StartedAt) {
						out[i], out[j] = out[j], out[i]
					}
				}
			}
		}
	}
	for _, spec := range specs {
		if limit, ok := spec.(specification.Limit); ok && len(out) > limit.Count {
			out = out[:limit.Count]
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Complete(_ context.Context, sessionID, userID uuid.UUID, rating *int, notes *string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok || session.UserId != userID {
		return 0, nil
	}
	now := time.Now()
	session.Status = entity.SessionStatusCompleted
	session.CompletedAt = &now
	session.Rating = rating
	session.Notes = notes
	return 1, nil
}

func sessionMatches(s *entity.MeditationSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if s.Id != sp.ID {
				return false
			}
		case specification.OwnedBy:
			if s.UserId != sp.UserID {
				return false
			}
		}
	}
	return true
}

type fakeVoiceCallRepo struct {
	mu    sync.Mutex
	calls map[string]*entity.VoiceCall // keyed by provider call id

	upserts int
}

func newFakeVoiceCallRepo() *fakeVoiceCallRepo {
	return &fakeVoiceCallRepo{calls: make(map[string]*entity.VoiceCall)}
}

func (r *fakeVoiceCallRepo) UpsertOnCallStart(_ context.Context, call *entity.VoiceCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if existing, ok := r.calls[call.VapiCallId]; ok {
		existing.UserId = call.UserId
		existing.StartedAt = call.StartedAt
		existing.Intent = call.Intent
		existing.Metadata = call.Metadata
		return nil
	}
	r.calls[call.VapiCallId] = call
	return nil
}

func (r *fakeVoiceCallRepo) UpdateOnCallEnd(_ context.Context, vapiCallID string, endedAt *time.Time, durationSec int, summary *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	call, ok := r.calls[vapiCallID]
	if !ok {
		return nil
	}
	call.EndedAt = endedAt
	call.DurationSec = durationSec
	call.Summary = summary
	return nil
}

func (r *fakeVoiceCallRepo) UpdateTranscript(_ context.Context, vapiCallID string, transcript string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	call, ok := r.calls[vapiCallID]
	if !ok {
		return nil
	}
	call.Transcript = &transcript
	return nil
}

func (r *fakeVoiceCallRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.VoiceCall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if s, ok := spec.(specification.ByVapiCallID); ok {
			if call, found := r.calls[s.CallID]; found {
				return call, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

type fakeUnitOfWork struct {
	profiles *fakeProfileRepo
	sessions *fakeSessionRepo
	calls    *fakeVoiceCallRepo
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error               { return nil }
func (u *fakeUnitOfWork) Rollback() error             { return nil }

func (u *fakeUnitOfWork) ProfileRepository() contract.ProfileRepository     { return u.profiles }
func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository     { return u.sessions }
func (u *fakeUnitOfWork) VoiceCallRepository() contract.VoiceCallRepository { return u.calls }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: &fakeUnitOfWork{
		profiles: newFakeProfileRepo(),
		sessions: newFakeSessionRepo(),
		calls:    newFakeVoiceCallRepo(),
	}}
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

// capturingPublisher records relay publishes instead of queueing them.
type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *capturingPublisher) Publish(_ string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, msg := range messages {
		p.payloads = append(p.payloads, msg.Payload)
	}
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.payloads))
	copy(out, p.payloads)
	return out
}

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

// fakeMailer captures tokens instead of sending mail. Sends happen on a
// background goroutine so delivery is surfaced through a channel.
type fakeMailer struct {
	sent chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan string, 8)}
}

func (m *fakeMailer) SendMagicLink(_ string, token string) error {
	m.sent <- token
	return nil
}
