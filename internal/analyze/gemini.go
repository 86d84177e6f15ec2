package analyze

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// generator abstracts the completion call so the service can be tested
// without the Gemini backend.
type generator interface {
	generate(ctx context.Context, system, user string, temperature float32, maxTokens int32) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func newGeminiGenerator(ctx context.Context, apiKey, model string) (*geminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &geminiGenerator{client: client, model: model}, nil
}

func (g *geminiGenerator) generate(ctx context.Context, system, user string, temperature float32, maxTokens int32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		Temperature:       genai.Ptr(temperature),
		MaxOutputTokens:   maxTokens,
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("empty response from model %s", g.model)
}
