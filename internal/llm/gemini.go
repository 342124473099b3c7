package llm

import (
	"context"
	"fmt"
	"strings"

	"physionote/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type geminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func newGeminiProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingCredential)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiProvider{
		client:      client,
		model:       cfg.GeminiModel,
		temperature: cfg.LLMTemperature,
		maxTokens:   int32(cfg.LLMMaxTokens),
	}, nil
}

func (p *geminiProvider) Name() string { return ProviderGemini }

func (p *geminiProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	m := p.client.GenerativeModel(p.model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(p.temperature)
	m.SetMaxOutputTokens(p.maxTokens)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return sb.String(), nil
}

// Close releases the underlying gRPC connection.
func (p *geminiProvider) Close() error {
	return p.client.Close()
}
