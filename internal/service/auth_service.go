package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"voice-meditation-be/internal/config"
	"voice-meditation-be/internal/dto"
	"voice-meditation-be/internal/entity"
	"voice-meditation-be/internal/pkg/mailer"
	"voice-meditation-be/internal/repository/memory"
	"voice-meditation-be/internal/repository/specification"
	"voice-meditation-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidMagicLink    = errors.New("invalid or expired sign-in link")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type IAuthService interface {
	RequestMagicLink(ctx context.Context, req *dto.MagicLinkRequest) error
	Verify(ctx context.Context, req *dto.VerifyRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, req *dto.LogoutRequest) error
}

type authService struct {
	uowFactory    unitofwork.RepositoryFactory
	magicLinkRepo *memory.MagicLinkRepository
	emailService  mailer.IEmailService
	authCfg       config.AuthConfig
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	magicLinkRepo *memory.MagicLinkRepository,
	emailService mailer.IEmailService,
	authCfg config.AuthConfig,
) IAuthService {
	return &authService{
		uowFactory:    uowFactory,
		magicLinkRepo: magicLinkRepo,
		emailService:  emailService,
		authCfg:       authCfg,
	}
}

func generateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestMagicLink issues a one-time sign-in token and mails the link.
// It always succeeds for well-formed requests so callers cannot discover
// which addresses have accounts.
func (s *authService) RequestMagicLink(ctx context.Context, req *dto.MagicLinkRequest) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	now := time.Now()
	s.magicLinkRepo.Save(hashToken(token), &memory.PendingMagicLink{
		Email:     req.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Duration(s.authCfg.MagicLinkTTL) * time.Minute),
	})

	go func() {
		if emailErr := s.emailService.SendMagicLink(req.Email, token); emailErr != nil {
			fmt.Printf("Error sending magic link email: %v\n", emailErr)
		}
	}()

	return nil
}

// Verify exchanges a magic-link token for an access/refresh token pair,
// creating the profile row on first sign-in.
func (s *authService) Verify(ctx context.Context, req *dto.VerifyRequest) (*dto.AuthResponse, error) {
	link, found := s.magicLinkRepo.Consume(hashToken(req.Token))
	if !found {
		return nil, ErrInvalidMagicLink
	}
	if time.Now().After(link.ExpiresAt) {
		return nil, ErrInvalidMagicLink
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ProfileRepository().FindOne(ctx, specification.ByEmail{Email: link.Email})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &entity.Profile{
			Id:        uuid.New(),
			Email:     link.Email,
			Name:      link.Email,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := uow.ProfileRepository().Create(ctx, profile); err != nil {
			return nil, err
		}
	}

	return s.issueTokens(ctx, uow, profile)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	stored, err := uow.ProfileRepository().FindRefreshToken(ctx, hashToken(req.RefreshToken))
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}

	profile, err := uow.ProfileRepository().FindOne(ctx, specification.ByID{ID: stored.UserId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrInvalidRefreshToken
	}

	// Rotation: the presented token is revoked before a new pair is issued.
	if err := uow.ProfileRepository().RevokeRefreshToken(ctx, stored.Id); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, uow, profile)
}

func (s *authService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	stored, err := uow.ProfileRepository().FindRefreshToken(ctx, hashToken(req.RefreshToken))
	if err != nil || stored == nil {
		// Nothing to revoke; logout is not an oracle either.
		return nil
	}
	return uow.ProfileRepository().RevokeRefreshToken(ctx, stored.Id)
}

func (s *authService) issueTokens(ctx context.Context, uow unitofwork.UnitOfWork, profile *entity.Profile) (*dto.AuthResponse, error) {
	expiresIn := s.authCfg.AccessTokenTTL * 60

	claims := jwt.MapClaims{
		"user_id": profile.Id.String(),
		"email":   profile.Email,
		"exp":     time.Now().Add(time.Duration(s.authCfg.AccessTokenTTL) * time.Minute).Unix(),
		"iat":     time.Now().Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.authCfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateToken()
	if err != nil {
		return nil, err
	}

	tokenEntity := &entity.UserRefreshToken{
		Id:        uuid.New(),
		UserId:    profile.Id,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().AddDate(0, 0, s.authCfg.RefreshTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := uow.ProfileRepository().CreateRefreshToken(ctx, tokenEntity); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
		User: dto.AuthUser{
			Id:    profile.Id,
			Email: profile.Email,
			Name:  profile.Name,
		},
	}, nil
}
