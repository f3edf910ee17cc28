package dto

// WebCallCredentials is handed to browsers so they can open a realtime
// call with the provider's public key.
type WebCallCredentials struct {
	ApiKey      string `json:"apiKey"`
	AssistantId string `json:"assistantId"`
	Type        string `json:"type"`
}

type WidgetConfig struct {
	ApiKey string `json:"apiKey"`
}
