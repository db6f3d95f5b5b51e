package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/samber/lo"
	"github.com/sandevgo/wishbot/internal/core"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

type Anthropic struct {
	baseProvider
}

func NewAnthropic(apiKey, model string, maxTokens int) *Anthropic {
	return newAnthropicWithURL(anthropicBaseURL, apiKey, model, maxTokens)
}

func newAnthropicWithURL(baseURL, apiKey, model string, maxTokens int) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider(baseURL, apiKey, model, maxTokens),
	}
}

func (a *Anthropic) Complete(ctx context.Context, history []core.Message, system string) (string, error) {
	payload := map[string]any{
		"model":      a.model,
		"max_tokens": a.maxTokens,
		"messages": lo.Map(history, func(m core.Message, _ int) chatMessage {
			return chatMessage{Role: m.Role, Content: m.Content}
		}),
	}
	if system != "" {
		payload["system"] = system
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", payload, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return "", err
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	var text string
	for _, c := range result.Content {
		if c.Type == "text" {
			text += c.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("empty completion: %s", string(data))
	}
	return text, nil
}
