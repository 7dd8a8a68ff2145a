package config

import (
	"testing"
	"time"
)

// envVars lists every variable Load reads; each test starts from a clean slate.
var envVars = []string{
	"TICKETFORGE_PROFILE", "TICKETFORGE_OUTPUT_DIR", "TICKETFORGE_SEED",
	"TICKETFORGE_SPRINTS", "TICKETFORGE_INITIATIVE", "TICKETFORGE_DATABASE_URL",
	"TICKETFORGE_NATS_URL", "TICKETFORGE_S3_BUCKET", "TICKETFORGE_S3_KEY_PREFIX",
	"TICKETFORGE_S3_REGION", "TICKETFORGE_S3_ENDPOINT", "TICKETFORGE_CONTENT_PROVIDER",
	"TICKETFORGE_CONTENT_TIMEOUT", "TICKETFORGE_CONTENT_RETRIES",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearAllEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutputDir != "generated_data" {
		t.Errorf("OutputDir = %q, want generated_data", cfg.OutputDir)
	}
	if cfg.SeedSet {
		t.Errorf("SeedSet = true, want false")
	}
	if cfg.Sprints != 3 {
		t.Errorf("Sprints = %d, want 3", cfg.Sprints)
	}
	if cfg.ContentProvider != ProviderTemplate {
		t.Errorf("ContentProvider = %q, want %q", cfg.ContentProvider, ProviderTemplate)
	}
	if cfg.ContentTimeout != 30*time.Second {
		t.Errorf("ContentTimeout = %v, want 30s", cfg.ContentTimeout)
	}
	if cfg.ContentRetries != 3 {
		t.Errorf("ContentRetries = %d, want 3", cfg.ContentRetries)
	}
	if cfg.S3Region != "us-east-1" {
		t.Errorf("S3Region = %q, want us-east-1", cfg.S3Region)
	}
	if cfg.S3Prefix != "ticketforge/" {
		t.Errorf("S3Prefix = %q, want ticketforge/", cfg.S3Prefix)
	}
	if cfg.DatabaseURL != "" || cfg.NATSURL != "" || cfg.S3Bucket != "" {
		t.Errorf("optional sinks should be disabled by default: %+v", cfg)
	}
}

func TestLoadCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TICKETFORGE_OUTPUT_DIR", "/tmp/out")
	t.Setenv("TICKETFORGE_SEED", "42")
	t.Setenv("TICKETFORGE_SPRINTS", "5")
	t.Setenv("TICKETFORGE_DATABASE_URL", "postgres://db:5432/tf")
	t.Setenv("TICKETFORGE_NATS_URL", "nats://localhost:4222")
	t.Setenv("TICKETFORGE_S3_BUCKET", "datasets")
	t.Setenv("TICKETFORGE_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("TICKETFORGE_CONTENT_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TICKETFORGE_CONTENT_TIMEOUT", "5s")
	t.Setenv("TICKETFORGE_CONTENT_RETRIES", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if !cfg.SeedSet || cfg.Seed != 42 {
		t.Errorf("Seed = %d (set=%v), want 42", cfg.Seed, cfg.SeedSet)
	}
	if cfg.Sprints != 5 {
		t.Errorf("Sprints = %d, want 5", cfg.Sprints)
	}
	if cfg.DatabaseURL != "postgres://db:5432/tf" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
	if cfg.S3Bucket != "datasets" || cfg.S3Endpoint != "http://minio:9000" {
		t.Errorf("S3 = %q %q", cfg.S3Bucket, cfg.S3Endpoint)
	}
	if cfg.ContentProvider != ProviderOpenAI {
		t.Errorf("ContentProvider = %q, want %q", cfg.ContentProvider, ProviderOpenAI)
	}
	if cfg.OpenAIModel != "gpt-3.5-turbo" {
		t.Errorf("OpenAIModel = %q", cfg.OpenAIModel)
	}
	if cfg.ContentTimeout != 5*time.Second {
		t.Errorf("ContentTimeout = %v, want 5s", cfg.ContentTimeout)
	}
	if cfg.ContentRetries != 1 {
		t.Errorf("ContentRetries = %d, want 1", cfg.ContentRetries)
	}
}

func TestLoadErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		env  map[string]string
	}{
		{"InvalidSeed", map[string]string{"TICKETFORGE_SEED": "abc"}},
		{"InvalidSprints", map[string]string{"TICKETFORGE_SPRINTS": "many"}},
		{"ZeroSprints", map[string]string{"TICKETFORGE_SPRINTS": "0"}},
		{"InvalidTimeout", map[string]string{"TICKETFORGE_CONTENT_TIMEOUT": "soon"}},
		{"ZeroRetries", map[string]string{"TICKETFORGE_CONTENT_RETRIES": "0"}},
		{"UnknownProvider", map[string]string{"TICKETFORGE_CONTENT_PROVIDER": "oracle"}},
		{"OpenAIWithoutKey", map[string]string{"TICKETFORGE_CONTENT_PROVIDER": "openai"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestEnvOrDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"EmptyUsesDefault", "TEST_ENVDEFAULT_EMPTY", "", "default-val", "default-val"},
		{"SetUsesEnv", "TEST_ENVDEFAULT_SET", "custom", "default-val", "custom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envVal)
			got := envOrDefault(tc.key, tc.fallback)
			if got != tc.want {
				t.Errorf("envOrDefault(%q, %q) = %q, want %q", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
