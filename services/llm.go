package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/darukaearth/rag-server/models"
)

// LLM generates a completion for a prompt. Non-deterministic and billed per
// call, so every call is bounded by a timeout and never retried here.
type LLM interface {
	Complete(ctx context.Context, system, prompt string, temperature float32) (string, error)
}

// GeminiLLM implements LLM over the Google Gemini API.
type GeminiLLM struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

var _ LLM = (*GeminiLLM)(nil)

// NewGeminiLLM wraps an existing Gemini client with a model name and a
// per-call timeout.
func NewGeminiLLM(client *genai.Client, model string, timeout time.Duration) *GeminiLLM {
	return &GeminiLLM{
		client:  client,
		model:   model,
		timeout: timeout,
	}
}

// Complete sends one prompt to Gemini and returns the response text verbatim.
func (g *GeminiLLM) Complete(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if system != "" {
		if contents := genai.Text(system); len(contents) > 0 {
			cfg.SystemInstruction = contents[0]
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: gemini api call failed: %v", models.ErrUpstream, err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned no candidates", models.ErrUpstream)
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return responseText.String(), nil
}
