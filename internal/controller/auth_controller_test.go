package controller

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"voice-meditation-be/internal/dto"
	"voice-meditation-be/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	requestErr error
	verifyResp *dto.AuthResponse
	verifyErr  error
	refreshErr error
	logoutErr  error
}

func (s *stubAuthService) RequestMagicLink(context.Context, *dto.MagicLinkRequest) error {
	return s.requestErr
}

func (s *stubAuthService) Verify(context.Context, *dto.VerifyRequest) (*dto.AuthResponse, error) {
	return s.verifyResp, s.verifyErr
}

func (s *stubAuthService) Refresh(context.Context, *dto.RefreshRequest) (*dto.AuthResponse, error) {
	return s.verifyResp, s.refreshErr
}

func (s *stubAuthService) Logout(context.Context, *dto.LogoutRequest) error {
	return s.logoutErr
}

func TestAuthController_RequestMagicLink(t *testing.T) {
	t.Run("rejects missing or invalid email", func(t *testing.T) {
		app := newTestApp(t, NewAuthController(&stubAuthService{}))

		for _, body := range []string{`{}`, `{"email":"not-an-email"}`} {
			req := httptest.NewRequest("POST", "/auth/magic-link", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, 400, resp.StatusCode)
			assert.Equal(t, "A valid email is required", decodeBody(t, resp)["error"])
		}
	})

	t.Run("answers identically for any well-formed address", func(t *testing.T) {
		app := newTestApp(t, NewAuthController(&stubAuthService{}))

		req := httptest.NewRequest("POST", "/auth/magic-link",
			bytes.NewBufferString(`{"email":"yogi@example.com"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Contains(t, decodeBody(t, resp)["message"], "sign-in link")
	})
}

func TestAuthController_Verify(t *testing.T) {
	t.Run("maps invalid link to 401", func(t *testing.T) {
		app := newTestApp(t, NewAuthController(&stubAuthService{verifyErr: service.ErrInvalidMagicLink}))

		req := httptest.NewRequest("POST", "/auth/verify", bytes.NewBufferString(`{"token":"stale"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "Invalid or expired token", decodeBody(t, resp)["error"])
	})

	t.Run("returns the token pair", func(t *testing.T) {
		userID := uuid.New()
		app := newTestApp(t, NewAuthController(&stubAuthService{verifyResp: &dto.AuthResponse{
			AccessToken:  "acc",
			RefreshToken: "ref",
			TokenType:    "bearer",
			ExpiresIn:    900,
			User:         dto.AuthUser{Id: userID, Email: "yogi@example.com"},
		}}))

		req := httptest.NewRequest("POST", "/auth/verify", bytes.NewBufferString(`{"token":"fresh"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "acc", body["access_token"])
		assert.Equal(t, "bearer", body["token_type"])
	})

	t.Run("requires a token field", func(t *testing.T) {
		app := newTestApp(t, NewAuthController(&stubAuthService{}))

		req := httptest.NewRequest("POST", "/auth/verify", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestAuthController_Refresh(t *testing.T) {
	app := newTestApp(t, NewAuthController(&stubAuthService{refreshErr: service.ErrInvalidRefreshToken}))

	req := httptest.NewRequest("POST", "/auth/refresh", bytes.NewBufferString(`{"refresh_token":"rotated"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", decodeBody(t, resp)["error"])
}

func TestAuthController_Logout(t *testing.T) {
	app := newTestApp(t, NewAuthController(&stubAuthService{}))

	req := httptest.NewRequest("POST", "/auth/logout", bytes.NewBufferString(`{"refresh_token":"any"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "Logged out", decodeBody(t, resp)["message"])
}
