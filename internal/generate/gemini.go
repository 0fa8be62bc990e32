package generate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini is a Backend backed by one Gemini model id. The config-level model
// chain creates one Gemini per id, sharing a single API client; the
// pipeline tries them in order.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	grounding   bool
}

// NewGeminiClient creates the shared Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// NewGemini creates a Backend for one model id. With grounding enabled the
// model may consult Google Search before answering.
func NewGemini(client *genai.Client, model string, temperature float64, grounding bool) *Gemini {
	return &Gemini{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		grounding:   grounding,
	}
}

// Name returns the model id.
func (g *Gemini) Name() string { return g.model }

// GenerateText performs one generation call.
func (g *Gemini) GenerateText(ctx context.Context, instruction string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if g.grounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(instruction), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
