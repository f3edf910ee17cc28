package service

import (
	"errors"

	"voice-meditation-be/internal/config"
	"voice-meditation-be/internal/dto"
)

var (
	ErrVapiNotConfigured   = errors.New("missing Vapi configuration: VAPI_PUBLIC_KEY and VAPI_ASSISTANT_ID are required")
	ErrWidgetNotConfigured = errors.New("missing widget configuration: INKEEP_API_KEY is required")
)

type IVoiceService interface {
	GetWebCallCredentials() (*dto.WebCallCredentials, error)
	GetWidgetConfig() (*dto.WidgetConfig, error)
}

type voiceService struct {
	vapiCfg   config.VapiConfig
	widgetCfg config.WidgetConfig
}

func NewVoiceService(vapiCfg config.VapiConfig, widgetCfg config.WidgetConfig) IVoiceService {
	return &voiceService{
		vapiCfg:   vapiCfg,
		widgetCfg: widgetCfg,
	}
}

// GetWebCallCredentials returns the public key and assistant id browsers
// need to open a web call. These are publishable values, not secrets.
func (s *voiceService) GetWebCallCredentials() (*dto.WebCallCredentials, error) {
	if s.vapiCfg.PublicKey == "" || s.vapiCfg.AssistantID == "" {
		return nil, ErrVapiNotConfigured
	}
	return &dto.WebCallCredentials{
		ApiKey:      s.vapiCfg.PublicKey,
		AssistantId: s.vapiCfg.AssistantID,
		Type:        "web",
	}, nil
}

func (s *voiceService) GetWidgetConfig() (*dto.WidgetConfig, error) {
	if s.widgetCfg.InkeepAPIKey == "" {
		return nil, ErrWidgetNotConfigured
	}
	return &dto.WidgetConfig{ApiKey: s.widgetCfg.InkeepAPIKey}, nil
}
