package llm

func NewOpenAI(apiKey, model string, maxTokens int) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:    "https://api.openai.com",
		APIKey:     apiKey,
		Model:      model,
		MaxTokens:  maxTokens,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	})
}
