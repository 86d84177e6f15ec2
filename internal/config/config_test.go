package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		Whisper: WhisperConfig{
			ModelPath:  "models/ggml-base.bin",
			BinaryPath: "./whisper",
		},
		TelegramToken: "token",
		GeminiAPIKey:  "key",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing telegram token",
			mutate:  func(c *Config) { c.TelegramToken = "" },
			wantErr: true,
		},
		{
			name:    "missing gemini key",
			mutate:  func(c *Config) { c.GeminiAPIKey = "" },
			wantErr: true,
		},
		{
			name:    "missing whisper model",
			mutate:  func(c *Config) { c.Whisper.ModelPath = "" },
			wantErr: true,
		},
		{
			name:    "missing whisper binary",
			mutate:  func(c *Config) { c.Whisper.BinaryPath = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q, want default", cfg.Gemini.Model)
	}
	if cfg.Acquire.MaxDurationMinutes != 120 {
		t.Errorf("MaxDurationMinutes = %d, want 120", cfg.Acquire.MaxDurationMinutes)
	}
	if len(cfg.Acquire.AllowedHosts) != 2 {
		t.Errorf("AllowedHosts = %v, want two default hosts", cfg.Acquire.AllowedHosts)
	}
	if cfg.Pipeline.MaxConcurrentRuns != 4 {
		t.Errorf("MaxConcurrentRuns = %d, want 4", cfg.Pipeline.MaxConcurrentRuns)
	}
	if cfg.Paths.Cache != "audio_cache" {
		t.Errorf("Paths.Cache = %q, want audio_cache", cfg.Paths.Cache)
	}
	if cfg.Whisper.MaxConcurrent != 1 {
		t.Errorf("Whisper.MaxConcurrent = %d, want 1", cfg.Whisper.MaxConcurrent)
	}
}

func TestValidateOutboxDefault(t *testing.T) {
	cfg := validConfig()
	cfg.Paths.Inbox = "data/inbox"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Paths.Outbox == "" {
		t.Error("Outbox should default when inbox is configured")
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
whisper:
  model_path: "models/ggml-base.bin"
  binary_path: "./whisper"
  language: "en"

acquire:
  allowed_hosts: ["youtube.com", "youtu.be", "vimeo.com"]
  max_duration_minutes: 90

paths:
  cache: "data/cache"

logging:
  level: "debug"
`
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("GEMINI_API_KEY", "llm-key")

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Whisper.ModelPath != "models/ggml-base.bin" {
		t.Errorf("ModelPath = %v", cfg.Whisper.ModelPath)
	}
	if cfg.Acquire.MaxDurationMinutes != 90 {
		t.Errorf("MaxDurationMinutes = %d, want 90", cfg.Acquire.MaxDurationMinutes)
	}
	if cfg.TelegramToken != "tg-token" {
		t.Errorf("TelegramToken = %q, want env value", cfg.TelegramToken)
	}
	if cfg.Paths.Cache != "data/cache" {
		t.Errorf("Cache = %q", cfg.Paths.Cache)
	}
}

func TestLoadMissingSecrets(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
whisper:
  model_path: "models/ggml-base.bin"
  binary_path: "./whisper"
`
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	tmpfile.Close()

	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(tmpfile.Name()); err == nil {
		t.Error("Load() should fail when secrets are absent")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	if _, err := Load("nonexistent.yaml"); err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
