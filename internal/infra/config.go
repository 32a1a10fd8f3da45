package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv          string
	Port            string
	MediaPathPrefix string
	ArtifactDir     string
	ArtifactBaseURL string
	PublicBaseURL   string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIImageModel string
	OpenAIChatModel  string

	ElevenLabsKey     string
	ElevenLabsBaseURL string
	ElevenLabsModel   string

	ReplicateAPIToken     string
	ReplicateBaseURL      string
	ReplicateVideoVersion string

	TwilioSID     string
	TwilioToken   string
	TwilioPhone   string
	TwilioBaseURL string

	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	AWSBucketName      string

	JobStore          string
	ConversationStore string
	DatabaseURL       string
	ConversationDir   string
	SQLitePath        string
	RedisAddr         string
	AMQPURL           string

	PollInterval     time.Duration
	PollMaxAttempts  int
	RetryAttempts    int
	RetryBaseDelay   time.Duration
	ProviderTimeout  time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
}

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// Provider credentials are optional: a missing credential only disables its capability.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		MediaPathPrefix: "/" + strings.Trim(getEnv("MEDIA_PATH_PREFIX", "/api/media"), "/"),
		ArtifactDir:     getEnv("ARTIFACT_DIR", "static/generated-assets"),
		ArtifactBaseURL: "/" + strings.Trim(getEnv("ARTIFACT_BASE_URL", "/static/generated-assets"), "/"),
		PublicBaseURL:   strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		OpenAIChatModel:  getEnv("OPENAI_CHAT_MODEL", "gpt-3.5-turbo"),

		ElevenLabsKey:     strings.TrimSpace(os.Getenv("ELEVENLABS_KEY")),
		ElevenLabsBaseURL: getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		ElevenLabsModel:   getEnv("ELEVENLABS_MODEL", "eleven_monolingual_v1"),

		ReplicateAPIToken:     strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN")),
		ReplicateBaseURL:      getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		ReplicateVideoVersion: getEnv("REPLICATE_VIDEO_VERSION", "028c75e7-4001-43d5-8e4f-5f56b3c6b1e8"),

		TwilioSID:     strings.TrimSpace(os.Getenv("TWILIO_SID")),
		TwilioToken:   strings.TrimSpace(os.Getenv("TWILIO_TOKEN")),
		TwilioPhone:   strings.TrimSpace(os.Getenv("TWILIO_PHONE")),
		TwilioBaseURL: getEnv("TWILIO_BASE_URL", "https://api.twilio.com/2010-04-01"),

		AWSAccessKeyID:     strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID")),
		AWSSecretAccessKey: strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY")),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSBucketName:      strings.TrimSpace(os.Getenv("AWS_BUCKET_NAME")),

		JobStore:          strings.ToLower(getEnv("JOB_STORE", StoreMemory)),
		ConversationStore: strings.ToLower(getEnv("CONVERSATION_STORE", StoreFile)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ConversationDir:   getEnv("CONVERSATION_DIR", "data/conversations"),
		SQLitePath:        getEnv("SQLITE_PATH", "data/media.db"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		AMQPURL:           strings.TrimSpace(os.Getenv("AMQP_URL")),

		PollInterval:     time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 5)),
		PollMaxAttempts:  getEnvInt("POLL_MAX_ATTEMPTS", 60),
		RetryAttempts:    getEnvInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:   time.Millisecond * time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 500)),
		ProviderTimeout:  time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	switch cfg.JobStore {
	case StoreMemory, StorePostgres:
	default:
		return nil, fmt.Errorf("JOB_STORE %q is not supported", cfg.JobStore)
	}
	switch cfg.ConversationStore {
	case StoreMemory, StoreFile, StoreSQLite, StorePostgres, StoreRedis:
	default:
		return nil, fmt.Errorf("CONVERSATION_STORE %q is not supported", cfg.ConversationStore)
	}
	if (cfg.JobStore == StorePostgres || cfg.ConversationStore == StorePostgres) && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for postgres stores")
	}
	if cfg.PollMaxAttempts <= 0 {
		return nil, fmt.Errorf("POLL_MAX_ATTEMPTS must be positive")
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}

	return cfg, nil
}

// OpenAIEnabled reports whether image and chat generation can run.
func (c *Config) OpenAIEnabled() bool { return c.OpenAIAPIKey != "" }

// ElevenLabsEnabled reports whether the primary speech provider is configured.
func (c *Config) ElevenLabsEnabled() bool { return c.ElevenLabsKey != "" }

// ReplicateEnabled reports whether video generation can run.
func (c *Config) ReplicateEnabled() bool { return c.ReplicateAPIToken != "" }

// TwilioEnabled reports whether outbound calls can be placed.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioSID != "" && c.TwilioToken != "" && c.TwilioPhone != ""
}

// AWSEnabled reports whether static AWS credentials are present.
func (c *Config) AWSEnabled() bool {
	return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

// S3Enabled reports whether the durable artifact mirror is configured.
func (c *Config) S3Enabled() bool {
	return c.AWSEnabled() && c.AWSBucketName != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
