package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/wishbot/pkg/log"
)

type ProviderConfig struct {
	Provider  string `env:"LLM_PROVIDER" envDefault:"anthropic"`
	Model     string `env:"LLM_MODEL" envDefault:"claude-3-5-sonnet-20240620"`
	MaxTokens int    `env:"LLM_MAX_TOKENS" envDefault:"1000"`

	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
}

func NewProviderConfig(ctx context.Context) *ProviderConfig {
	c := &ProviderConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Provider config")
	}
	return c
}
