package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Whisper  WhisperConfig  `yaml:"whisper"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Tools    ToolsConfig    `yaml:"tools"`
	Acquire  AcquireConfig  `yaml:"acquire"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Paths    PathsConfig    `yaml:"paths"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Secrets are environment-sourced only, never read from the yaml file.
	TelegramToken string `yaml:"-"`
	GeminiAPIKey  string `yaml:"-"`
}

type TelegramConfig struct {
	PollTimeout int `yaml:"poll_timeout"`
}

type WhisperConfig struct {
	BinaryPath    string `yaml:"binary_path"`
	ModelPath     string `yaml:"model_path"`
	Language      string `yaml:"language"`
	Threads       int    `yaml:"threads"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
}

type ToolsConfig struct {
	FFmpegPath string `yaml:"ffmpeg_path"`
	YtDlpPath  string `yaml:"ytdlp_path"`
}

type AcquireConfig struct {
	AllowedHosts       []string `yaml:"allowed_hosts"`
	MaxDurationMinutes int      `yaml:"max_duration_minutes"`
}

type PipelineConfig struct {
	MaxConcurrentRuns int `yaml:"max_concurrent_runs"`
}

type PathsConfig struct {
	Cache  string `yaml:"cache"`
	Inbox  string `yaml:"inbox"`
	Outbox string `yaml:"outbox"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the yaml config file, pulls secrets from the environment
// and validates the result. The returned Config is treated as immutable
// for the lifetime of the process.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}

	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.Whisper.MaxConcurrent == 0 {
		c.Whisper.MaxConcurrent = 1
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Tools.FFmpegPath == "" {
		c.Tools.FFmpegPath = "ffmpeg"
	}
	if c.Tools.YtDlpPath == "" {
		c.Tools.YtDlpPath = "yt-dlp"
	}
	if len(c.Acquire.AllowedHosts) == 0 {
		c.Acquire.AllowedHosts = []string{"youtube.com", "youtu.be"}
	}
	if c.Acquire.MaxDurationMinutes == 0 {
		c.Acquire.MaxDurationMinutes = 120
	}
	if c.Pipeline.MaxConcurrentRuns == 0 {
		c.Pipeline.MaxConcurrentRuns = 4
	}
	if c.Paths.Cache == "" {
		c.Paths.Cache = "audio_cache"
	}
	if c.Paths.Inbox != "" && c.Paths.Outbox == "" {
		c.Paths.Outbox = "protocols"
	}
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
