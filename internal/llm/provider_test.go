package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"physionote/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderRejectsUnknownName(t *testing.T) {
	_, err := NewProvider(context.Background(), &config.Config{LLMProvider: "provider-b"})
	require.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), "provider-b")
}

func TestNewProviderRequiresCredentials(t *testing.T) {
	for _, name := range []string{ProviderMistral, ProviderAzureOpenAI, ProviderGemini} {
		t.Run(name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), &config.Config{LLMProvider: name})
			assert.ErrorIs(t, err, ErrMissingCredential)
		})
	}
}

func TestNewProviderIsCaseInsensitive(t *testing.T) {
	p, err := NewProvider(context.Background(), &config.Config{LLMProvider: " Mistral ", MistralAPIKey: "k", MistralBaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.Equal(t, ProviderMistral, p.Name())
}

func TestProvidersListsRegistry(t *testing.T) {
	assert.Equal(t, []string{"azure_openai", "gemini", "mistral"}, Providers())
}

const completionBody = `{
  "id": "cmpl-1",
  "object": "chat.completion",
  "model": "mistral-large-latest",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"subjective\":\"s\",\"objective\":\"o\",\"assessment\":\"a\",\"plan\":\"p\"}"}}]
}`

func TestMistralProviderSendsJSONModeRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer mistral-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "mistral-large-latest", body["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
		assert.InDelta(t, 0.3, body["temperature"], 0.0001)
		assert.EqualValues(t, 2000, body["max_tokens"])
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	p, err := NewProvider(context.Background(), &config.Config{
		LLMProvider:    ProviderMistral,
		MistralAPIKey:  "mistral-key",
		MistralBaseURL: srv.URL,
		MistralModel:   "mistral-large-latest",
		LLMTemperature: 0.3,
		LLMMaxTokens:   2000,
	})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), Prompt{System: "sys", User: "user"})
	require.NoError(t, err)
	assert.Contains(t, out, `"plan":"p"`)
}

func TestAzureProviderUsesDeployment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/openai/deployments/soap-gpt/"), r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "azure-key", r.Header.Get("api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	p, err := NewProvider(context.Background(), &config.Config{
		LLMProvider:           ProviderAzureOpenAI,
		AzureOpenAIAPIKey:     "azure-key",
		AzureOpenAIEndpoint:   srv.URL,
		AzureOpenAIDeployment: "soap-gpt",
		AzureOpenAIAPIVersion: "2024-06-01",
	})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), Prompt{System: "sys", User: "user"})
	require.NoError(t, err)
}

func TestOpenAIProviderEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer srv.Close()

	p, err := NewProvider(context.Background(), &config.Config{LLMProvider: ProviderMistral, MistralAPIKey: "k", MistralBaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), Prompt{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
