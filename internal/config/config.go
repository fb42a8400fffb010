package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var reBitrate = regexp.MustCompile(`^\d+[kKmM]?$`)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Paths       PathsConfig       `yaml:"paths"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	YouTube     YouTubeConfig     `yaml:"youtube"`
	History     HistoryConfig     `yaml:"history"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type PathsConfig struct {
	Data  string `yaml:"data"`
	Temp  string `yaml:"temp"`
	Inbox string `yaml:"inbox"`
}

type FFmpegConfig struct {
	Binary      string        `yaml:"binary"`
	ProbeBinary string        `yaml:"probe_binary"`
	SampleRate  int           `yaml:"sample_rate"`
	Channels    int           `yaml:"channels"`
	Bitrate     string        `yaml:"bitrate"`
	Timeout     time.Duration `yaml:"timeout"`
}

type GeminiConfig struct {
	APIKeys       []string      `yaml:"api_keys"`
	Model         string        `yaml:"model"`
	MaxRetries    int           `yaml:"max_retries"`
	InlineLimitMB float64       `yaml:"inline_limit_mb"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

type WhisperConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type YouTubeConfig struct {
	MaxDuration time.Duration `yaml:"max_duration"`
}

type HistoryConfig struct {
	MaxItems int `yaml:"max_items"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Load reads .env files (when present), the YAML config at path, applies
// environment overrides and validates the result.
func Load(path string, envFiles ...string) (*Config, error) {
	loadEnvFiles(envFiles...)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// loadEnvFiles loads existing dotenv files; variables already set win.
func loadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEYS")); v != "" {
		cfg.Gemini.APIKeys = splitKeys(v)
	} else if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		cfg.Gemini.APIKeys = []string{v}
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.Whisper.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("DIGEST_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("DIGEST_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
}

func splitKeys(v string) []string {
	var keys []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *Config) Validate() error {
	if c.Performance.MaxConcurrent < 0 {
		return fmt.Errorf("performance.max_concurrent must not be negative")
	}
	if c.History.MaxItems < 0 {
		return fmt.Errorf("history.max_items must not be negative")
	}
	if c.FFmpeg.Bitrate != "" && !reBitrate.MatchString(c.FFmpeg.Bitrate) {
		return fmt.Errorf("ffmpeg.bitrate %q is invalid", c.FFmpeg.Bitrate)
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 2 << 30
	}
	if c.Paths.Data == "" {
		c.Paths.Data = "data"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = "ffprobe"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.FFmpeg.Channels == 0 {
		c.FFmpeg.Channels = 1
	}
	if c.FFmpeg.Bitrate == "" {
		c.FFmpeg.Bitrate = "64k"
	}
	if c.FFmpeg.Timeout == 0 {
		c.FFmpeg.Timeout = 5 * time.Minute
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash-exp"
	}
	if c.Gemini.MaxRetries == 0 {
		c.Gemini.MaxRetries = 3
	}
	if c.Gemini.InlineLimitMB == 0 {
		c.Gemini.InlineLimitMB = 15
	}
	if c.Gemini.PollInterval == 0 {
		c.Gemini.PollInterval = 2 * time.Second
	}
	if c.Whisper.Model == "" {
		c.Whisper.Model = "whisper-1"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "ja"
	}
	if c.YouTube.MaxDuration == 0 {
		c.YouTube.MaxDuration = 30 * time.Minute
	}
	if c.History.MaxItems == 0 {
		c.History.MaxItems = 20
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 3
	}

	return nil
}

// DatabasePath is the sqlite file holding history and settings.
func (c *Config) DatabasePath() string {
	return strings.TrimRight(c.Paths.Data, "/") + "/digest.db"
}
