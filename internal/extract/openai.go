package extract

import (
	"context"
	"errors"

	"github.com/dmorgan81/characterbot/internal/log"
	"github.com/sashabaranov/go-openai"
)

// OpenAICompleter talks to any OpenAI-compatible chat completion endpoint.
type OpenAICompleter struct {
	Client      *openai.Client
	ModelName   string
	Temperature float32
}

func NewOpenAICompleter(key, baseURL, model string, temperature float32) *OpenAICompleter {
	config := openai.DefaultConfig(key)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAICompleter{
		Client:      openai.NewClientWithConfig(config),
		ModelName:   model,
		Temperature: temperature,
	}
}

func (c *OpenAICompleter) Model() string { return c.ModelName }

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("openai").With("model", c.ModelName)
	log.Info("requesting chat completion")

	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.ModelName,
		Temperature: c.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in chat completion")
	}

	log.Info("received chat completion",
		"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}
