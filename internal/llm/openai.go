package llm

import (
	"context"
	"fmt"
	"strings"

	"physionote/internal/config"

	"github.com/sashabaranov/go-openai"
)

// openAIProvider talks to any OpenAI-compatible chat completion API. Mistral and
// Azure OpenAI both expose one.
type openAIProvider struct {
	name        string
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func newMistralProvider(_ context.Context, cfg *config.Config) (Provider, error) {
	if strings.TrimSpace(cfg.MistralAPIKey) == "" {
		return nil, fmt.Errorf("%w: MISTRAL_API_KEY", ErrMissingCredential)
	}
	clientCfg := openai.DefaultConfig(cfg.MistralAPIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.MistralBaseURL, "/")
	return &openAIProvider{
		name:        ProviderMistral,
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.MistralModel,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxTokens,
	}, nil
}

func newAzureOpenAIProvider(_ context.Context, cfg *config.Config) (Provider, error) {
	switch {
	case strings.TrimSpace(cfg.AzureOpenAIAPIKey) == "":
		return nil, fmt.Errorf("%w: AZURE_OPENAI_API_KEY", ErrMissingCredential)
	case strings.TrimSpace(cfg.AzureOpenAIEndpoint) == "":
		return nil, fmt.Errorf("%w: AZURE_OPENAI_ENDPOINT", ErrMissingCredential)
	case strings.TrimSpace(cfg.AzureOpenAIDeployment) == "":
		return nil, fmt.Errorf("%w: AZURE_OPENAI_DEPLOYMENT", ErrMissingCredential)
	}
	clientCfg := openai.DefaultAzureConfig(cfg.AzureOpenAIAPIKey, cfg.AzureOpenAIEndpoint)
	if cfg.AzureOpenAIAPIVersion != "" {
		clientCfg.APIVersion = cfg.AzureOpenAIAPIVersion
	}
	deployment := cfg.AzureOpenAIDeployment
	clientCfg.AzureModelMapperFunc = func(string) string { return deployment }
	return &openAIProvider{
		name:        ProviderAzureOpenAI,
		client:      openai.NewClientWithConfig(clientCfg),
		model:       deployment,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxTokens,
	}, nil
}

func (p *openAIProvider) Name() string { return p.name }

func (p *openAIProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
