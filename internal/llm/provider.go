package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ProviderConfig describe que backend usar y como conectarse.
type ProviderConfig struct {
	Provider        string
	BaseURL         string
	APIKey          string
	Model           string
	Timeout         time.Duration
	DisableThinking bool
	GeminiAPIKey    string
	GeminiModel     string
}

// NewClient construye el LLMClient segun el proveedor configurado.
func NewClient(ctx context.Context, pc ProviderConfig, logger *zap.Logger) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(pc.Provider)) {
	case "", ProviderOpenAI:
		return NewHTTPClient(pc.BaseURL, pc.APIKey, pc.Model, logger,
			WithTimeout(pc.Timeout),
			WithThinkingDisabled(pc.DisableThinking),
		), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, pc.GeminiAPIKey, pc.GeminiModel, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", pc.Provider)
	}
}
