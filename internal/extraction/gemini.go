package extraction

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Generator sends one prompt to a language model and returns its raw text.
// This interface enables mocking of the model call in tests.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// GeminiGenerator is the Generator backed by the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini client. An empty apiKey lets the genai
// SDK fall back to GOOGLE_API_KEY / GEMINI_API_KEY from the environment.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if model == "" {
		model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiGenerator: create genai client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate requests a JSON response constrained by schema.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return resp.Text(), nil
}
