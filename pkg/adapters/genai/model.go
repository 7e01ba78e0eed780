// Package genai adapts Google's Gemini API to the ChatModel port.
package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cairnlabs/cairn/pkg/ports"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Model implements ports.ChatModel over the Gemini generate-content API.
// Calls are synchronous and carry no internal retry; cancellation comes
// from the caller's context.
type Model struct {
	client *genai.Client
	model  string
}

var _ ports.ChatModel = (*Model)(nil)

type Option func(*Model)

// WithModel overrides the Gemini model name.
func WithModel(model string) Option {
	return func(m *Model) {
		if model != "" {
			m.model = model
		}
	}
}

// New creates a Gemini-backed chat model.
func New(ctx context.Context, apiKey string, opts ...Option) (*Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	m := &Model{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Complete sends a bare prompt and returns the completion.
func (m *Model) Complete(ctx context.Context, prompt string) (string, error) {
	return m.generate(ctx, nil, prompt)
}

// CompleteWithSystem sends a prompt under a system instruction.
func (m *Model) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var config *genai.GenerateContentConfig
	if systemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}
	return m.generate(ctx, config, userPrompt)
}

func (m *Model) generate(ctx context.Context, config *genai.GenerateContentConfig, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := m.client.Models.GenerateContent(ctx, m.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("genai generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("genai returned no text")
	}
	return text, nil
}
