package service

import (
	"testing"

	"voice-meditation-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceService_GetWebCallCredentials(t *testing.T) {
	t.Run("requires both public key and assistant id", func(t *testing.T) {
		svc := NewVoiceService(config.VapiConfig{PublicKey: "pk_only"}, config.WidgetConfig{})
		_, err := svc.GetWebCallCredentials()
		assert.ErrorIs(t, err, ErrVapiNotConfigured)

		svc = NewVoiceService(config.VapiConfig{AssistantID: "asst_only"}, config.WidgetConfig{})
		_, err = svc.GetWebCallCredentials()
		assert.ErrorIs(t, err, ErrVapiNotConfigured)
	})

	t.Run("returns publishable credentials", func(t *testing.T) {
		svc := NewVoiceService(config.VapiConfig{PublicKey: "pk_123", AssistantID: "asst_456"}, config.WidgetConfig{})
		creds, err := svc.GetWebCallCredentials()
		require.NoError(t, err)
		assert.Equal(t, "pk_123", creds.ApiKey)
		assert.Equal(t, "asst_456", creds.AssistantId)
		assert.Equal(t, "web", creds.Type)
	})
}

func TestVoiceService_GetWidgetConfig(t *testing.T) {
	svc := NewVoiceService(config.VapiConfig{}, config.WidgetConfig{})
	_, err := svc.GetWidgetConfig()
	assert.ErrorIs(t, err, ErrWidgetNotConfigured)

	svc = NewVoiceService(config.VapiConfig{}, config.WidgetConfig{InkeepAPIKey: "ik_789"})
	cfg, err := svc.GetWidgetConfig()
	require.NoError(t, err)
	assert.Equal(t, "ik_789", cfg.ApiKey)
}
