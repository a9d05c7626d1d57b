package extract

import (
	"context"
	"errors"

	"github.com/dmorgan81/characterbot/internal/log"
	"google.golang.org/genai"
)

// GeminiCompleter calls the Gemini API through the genai SDK.
type GeminiCompleter struct {
	Client      *genai.Client
	ModelName   string
	Temperature float32
}

// NewGeminiCompleter creates a client for the Gemini API. An empty baseURL
// uses the public endpoint.
func NewGeminiCompleter(ctx context.Context, key, baseURL, model string, temperature float32) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiCompleter{Client: client, ModelName: model, Temperature: temperature}, nil
}

func (c *GeminiCompleter) Model() string { return c.ModelName }

func (c *GeminiCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("gemini").With("model", c.ModelName)
	log.Info("generating content")

	resp, err := c.Client.Models.GenerateContent(ctx, c.ModelName, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr(c.Temperature),
	})
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from gemini")
	}
	if resp.UsageMetadata != nil {
		log.Info("received content",
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"candidate_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	return text, nil
}
