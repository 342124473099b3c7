package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"production"`

	DBConnectionString string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns         int32  `envconfig:"DB_MAX_CONNS" default:"25"`

	// Session tokens
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	JWTTTLHours int    `envconfig:"JWT_TTL_HOURS" default:"168"`

	GoogleClientID string `envconfig:"GOOGLE_CLIENT_ID"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Transcription provider settings
	DeepgramAPIKey           string `envconfig:"DEEPGRAM_API_KEY"`
	DeepgramBaseURL          string `envconfig:"DEEPGRAM_BASE_URL" default:"https://api.deepgram.com/v1"`
	DeepgramModel            string `envconfig:"DEEPGRAM_MODEL" default:"nova-3"`
	TranscriptionTimeoutSec  int    `envconfig:"TRANSCRIPTION_TIMEOUT_SEC" default:"30"`
	TranscriptionMaxAttempts int    `envconfig:"TRANSCRIPTION_MAX_ATTEMPTS" default:"2"`
	TranscriptionBackoffMS   int    `envconfig:"TRANSCRIPTION_BACKOFF_MS" default:"1000"`

	// LLM provider settings
	LLMProvider           string  `envconfig:"LLM_PROVIDER" default:"mistral"`
	LLMTemperature        float32 `envconfig:"LLM_TEMPERATURE" default:"0.3"`
	LLMMaxTokens          int     `envconfig:"LLM_MAX_TOKENS" default:"2000"`
	MistralAPIKey         string  `envconfig:"MISTRAL_API_KEY"`
	MistralBaseURL        string  `envconfig:"MISTRAL_BASE_URL" default:"https://api.mistral.ai/v1"`
	MistralModel          string  `envconfig:"MISTRAL_MODEL" default:"mistral-large-latest"`
	AzureOpenAIEndpoint   string  `envconfig:"AZURE_OPENAI_ENDPOINT"`
	AzureOpenAIAPIKey     string  `envconfig:"AZURE_OPENAI_API_KEY"`
	AzureOpenAIDeployment string  `envconfig:"AZURE_OPENAI_DEPLOYMENT"`
	AzureOpenAIAPIVersion string  `envconfig:"AZURE_OPENAI_API_VERSION" default:"2024-06-01"`
	GeminiAPIKey          string  `envconfig:"GEMINI_API_KEY"`
	GeminiModel           string  `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	// SOAP extraction settings
	SoapMaxAttempts        int `envconfig:"SOAP_MAX_ATTEMPTS" default:"3"`
	SoapBackoffInitialSec  int `envconfig:"SOAP_BACKOFF_INITIAL_SEC" default:"2"`
	SoapBackoffMaxSec      int `envconfig:"SOAP_BACKOFF_MAX_SEC" default:"10"`
	SoapLatencyWarningSec  int `envconfig:"SOAP_LATENCY_WARNING_SEC" default:"25"`
	RecordingLatencyWarnMS int `envconfig:"RECORDING_LATENCY_WARNING_MS" default:"5000"`

	// Note template
	TemplateSource   string `envconfig:"TEMPLATE_SOURCE" default:"file"`
	TemplatePath     string `envconfig:"TEMPLATE_PATH" default:"docs/templates/physiotherapy-note-template.md"`
	TemplateS3Bucket string `envconfig:"TEMPLATE_S3_BUCKET"`
	TemplateS3Key    string `envconfig:"TEMPLATE_S3_KEY" default:"templates/physiotherapy-note-template.md"`
	S3URL            string `envconfig:"S3_URL"`
	S3Region         string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY"`

	// Subscription policy
	TrialDurationDays   int      `envconfig:"TRIAL_DURATION_DAYS" default:"7"`
	TrialQuota          int      `envconfig:"TRIAL_QUOTA" default:"5"`
	MaxRecordingSeconds int      `envconfig:"MAX_RECORDING_SECONDS" default:"600"`
	MaxUploadMB         int64    `envconfig:"MAX_UPLOAD_MB" default:"50"`
	AllowedAudioTypes   []string `envconfig:"ALLOWED_AUDIO_TYPES" default:"audio/webm,audio/ogg,audio/mp4,audio/mpeg"`

	// Google Cloud
	GCPProjectID      string `envconfig:"GCP_PROJECT_ID"`
	PubSubEventsTopic string `envconfig:"PUBSUB_EVENTS_TOPIC" default:"pipeline-events"`
	SecretsProjectID  string `envconfig:"SECRETS_PROJECT_ID"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs against local infrastructure.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.TranscriptionTimeoutSec) * time.Second
}

func (c *Config) TrialDuration() time.Duration {
	return time.Duration(c.TrialDurationDays) * 24 * time.Hour
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}
