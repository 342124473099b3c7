// Package llm extracts structured SOAP sections from transcripts through an
// interchangeable chat-completion provider.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"physionote/internal/config"
)

const (
	ProviderMistral     = "mistral"
	ProviderAzureOpenAI = "azure_openai"
	ProviderGemini      = "gemini"
)

var (
	// ErrUnknownProvider is a configuration error raised when LLM_PROVIDER names no registered provider.
	ErrUnknownProvider = errors.New("llm: unknown provider")
	// ErrMissingCredential is a configuration error raised when the selected provider lacks its settings.
	ErrMissingCredential = errors.New("llm: provider credential is not configured")
	// ErrEmptyResponse means the provider answered without any content.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Prompt is one chat exchange: the system instruction and the user message.
type Prompt struct {
	System string
	User   string
}

// Provider sends a prompt and returns the raw text of the model's answer, which
// is expected to be a JSON object.
type Provider interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Factory builds a provider from configuration.
type Factory func(ctx context.Context, cfg *config.Config) (Provider, error)

var factories = map[string]Factory{
	ProviderMistral:     newMistralProvider,
	ProviderAzureOpenAI: newAzureOpenAIProvider,
	ProviderGemini:      newGeminiProvider,
}

// Providers lists the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider builds the provider named by cfg.LLMProvider.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w %q, use one of %s", ErrUnknownProvider, cfg.LLMProvider, strings.Join(Providers(), ", "))
	}
	return factory(ctx, cfg)
}
