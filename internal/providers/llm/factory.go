package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/wishbot/internal/config"
	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/pkg/log"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, cfg *config.ProviderConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.MaxTokens), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
