package llm

import "github.com/sandevgo/wishbot/internal/core"

func NewOpenRouter(apiKey, model string, maxTokens int) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:    "https://openrouter.ai/api",
		APIKey:     apiKey,
		Model:      model,
		MaxTokens:  maxTokens,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
		ExtraHeaders: map[string]string{
			"HTTP-Referer": core.BotRepositoryURL,
			"X-Title":      core.BotName,
		},
	})
}
