package service

import (
	"context"
	"fmt"
	"strings"

	"physionote/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/rs/zerolog"
)

// SecretAccessor reads the latest version of a named secret.
type SecretAccessor interface {
	AccessSecret(ctx context.Context, name string) (string, error)
	Close() error
}

type secretManagerAccessor struct {
	client    *secretmanager.Client
	projectID string
}

// NewSecretManagerAccessor connects to Secret Manager in the configured project.
func NewSecretManagerAccessor(ctx context.Context, cfg *config.Config) (SecretAccessor, error) {
	projectID := cfg.SecretsProjectID
	if projectID == "" {
		projectID = cfg.GCPProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set for the current environment")
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return &secretManagerAccessor{client: client, projectID: projectID}, nil
}

func (s *secretManagerAccessor) AccessSecret(ctx context.Context, name string) (string, error) {
	resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, name)
	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version %s: %w", name, err)
	}
	return string(result.Payload.Data), nil
}

func (s *secretManagerAccessor) Close() error {
	return s.client.Close()
}

// providerSecrets maps secret names to the config fields they fill.
func providerSecrets(cfg *config.Config) map[string]*string {
	return map[string]*string{
		"deepgram-api-key":     &cfg.DeepgramAPIKey,
		"mistral-api-key":      &cfg.MistralAPIKey,
		"azure-openai-api-key": &cfg.AzureOpenAIAPIKey,
		"gemini-api-key":       &cfg.GeminiAPIKey,
	}
}

// ResolveProviderSecrets fills provider credentials left blank in the environment.
// A secret that cannot be read leaves the field blank; the provider then fails at startup.
func ResolveProviderSecrets(ctx context.Context, cfg *config.Config, accessor SecretAccessor, logger zerolog.Logger) int {
	resolved := 0
	for name, field := range providerSecrets(cfg) {
		if strings.TrimSpace(*field) != "" {
			continue
		}
		value, err := accessor.AccessSecret(ctx, name)
		if err != nil {
			logger.Debug().Err(err).Str("secret", name).Msg("Secret not resolved")
			continue
		}
		*field = strings.TrimSpace(value)
		resolved++
	}
	if resolved > 0 {
		logger.Info().Int("count", resolved).Msg("Provider credentials resolved from Secret Manager")
	}
	return resolved
}
