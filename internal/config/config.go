package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted by TICKETFORGE_CONTENT_PROVIDER.
const (
	ProviderTemplate = "template"
	ProviderOpenAI   = "openai"
)

type Config struct {
	ProfilePath string // TICKETFORGE_PROFILE (optional, empty = built-in profile)
	OutputDir   string // TICKETFORGE_OUTPUT_DIR (default "generated_data")
	Seed        int64  // TICKETFORGE_SEED (optional)
	SeedSet     bool
	Sprints     int    // TICKETFORGE_SPRINTS (default 3)
	Initiative  string // TICKETFORGE_INITIATIVE (optional, must name a profile initiative)

	DatabaseURL string // TICKETFORGE_DATABASE_URL (optional, empty = no Postgres sink)
	NATSURL     string // TICKETFORGE_NATS_URL (optional, empty = no events)

	// Export settings
	S3Bucket   string // TICKETFORGE_S3_BUCKET (enables S3 when set)
	S3Prefix   string // TICKETFORGE_S3_KEY_PREFIX (default "ticketforge/")
	S3Region   string // TICKETFORGE_S3_REGION (default "us-east-1")
	S3Endpoint string // TICKETFORGE_S3_ENDPOINT (custom endpoint for MinIO)

	// Content provider settings
	ContentProvider string        // TICKETFORGE_CONTENT_PROVIDER (default "template")
	ContentTimeout  time.Duration // TICKETFORGE_CONTENT_TIMEOUT (default 30s)
	ContentRetries  int           // TICKETFORGE_CONTENT_RETRIES (default 3)
	OpenAIKey       string        // OPENAI_API_KEY (required for openai)
	OpenAIBaseURL   string        // OPENAI_BASE_URL (default "https://api.openai.com/v1")
	OpenAIModel     string        // OPENAI_MODEL (default "gpt-3.5-turbo")
}

// Load reads configuration from the environment. A .env file in the
// working directory, when present, is applied first without overriding
// variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := &Config{
		ProfilePath:     os.Getenv("TICKETFORGE_PROFILE"),
		OutputDir:       envOrDefault("TICKETFORGE_OUTPUT_DIR", "generated_data"),
		Initiative:      os.Getenv("TICKETFORGE_INITIATIVE"),
		DatabaseURL:     os.Getenv("TICKETFORGE_DATABASE_URL"),
		NATSURL:         os.Getenv("TICKETFORGE_NATS_URL"),
		S3Bucket:        os.Getenv("TICKETFORGE_S3_BUCKET"),
		S3Prefix:        envOrDefault("TICKETFORGE_S3_KEY_PREFIX", "ticketforge/"),
		S3Region:        envOrDefault("TICKETFORGE_S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("TICKETFORGE_S3_ENDPOINT"),
		ContentProvider: strings.ToLower(envOrDefault("TICKETFORGE_CONTENT_PROVIDER", ProviderTemplate)),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:     envOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
	}

	if s := os.Getenv("TICKETFORGE_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TICKETFORGE_SEED: %w", err)
		}
		c.Seed, c.SeedSet = seed, true
	}

	sprints, err := strconv.Atoi(envOrDefault("TICKETFORGE_SPRINTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("TICKETFORGE_SPRINTS: %w", err)
	}
	if sprints < 1 {
		return nil, fmt.Errorf("TICKETFORGE_SPRINTS must be at least 1, got %d", sprints)
	}
	c.Sprints = sprints

	timeout, err := time.ParseDuration(envOrDefault("TICKETFORGE_CONTENT_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("TICKETFORGE_CONTENT_TIMEOUT: %w", err)
	}
	c.ContentTimeout = timeout

	retries, err := strconv.Atoi(envOrDefault("TICKETFORGE_CONTENT_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("TICKETFORGE_CONTENT_RETRIES: %w", err)
	}
	c.ContentRetries = retries

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.ContentProvider {
	case ProviderTemplate:
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TICKETFORGE_CONTENT_PROVIDER=%s", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("TICKETFORGE_CONTENT_PROVIDER: unknown provider %q", c.ContentProvider)
	}
	if c.ContentRetries < 1 {
		return fmt.Errorf("TICKETFORGE_CONTENT_RETRIES must be at least 1, got %d", c.ContentRetries)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
