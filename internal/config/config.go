// Package config loads shortscribe settings.
//
// Priority, lowest first: defaults, YAML file, .env file, environment,
// command line flags. Flags are applied by the cli package after Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mgpai22/shortscribe/internal/caption"
	"github.com/mgpai22/shortscribe/internal/pipeline"
	"github.com/mgpai22/shortscribe/internal/youtube"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName = "shortscribe.yaml"
	DefaultAddr     = ":8080"
	envPrefix       = "SHORTSCRIBE_"
)

// where captions come from
const (
	ProviderWatchPage = "watchpage"
	ProviderYtdlp     = "ytdlp"
)

type Config struct {
	Language  string `yaml:"language"`
	MaxShorts int    `yaml:"max_shorts"`

	// caption source
	Provider          string        `yaml:"provider"`
	YtdlpPath         string        `yaml:"ytdlp_path"`
	YtdlpTimeout      time.Duration `yaml:"ytdlp_timeout"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`

	// speech-to-text when a video has no captions; empty disables it
	SpeechFallback string `yaml:"speech_fallback"`
	SpeechModel    string `yaml:"speech_model"`

	// translation of finished transcripts; empty TranslateTo disables it
	TranslateTo       string `yaml:"translate_to"`
	TranslateProvider string `yaml:"translate_provider"`
	TranslateModel    string `yaml:"translate_model"`

	ServerAddr string `yaml:"server_addr"`

	GeminiAPIKey    string `yaml:"gemini_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
}

func DefaultConfig() *Config {
	return &Config{
		Language:          caption.DefaultLanguage,
		MaxShorts:         pipeline.DefaultMaxShorts,
		Provider:          ProviderWatchPage,
		YtdlpPath:         "yt-dlp",
		YtdlpTimeout:      youtube.DefaultYtdlpTimeout,
		HTTPTimeout:       youtube.DefaultHTTPTimeout,
		RequestsPerSecond: youtube.DefaultRequestsPerSecond,
		TranslateProvider: "gemini",
		ServerAddr:        DefaultAddr,
	}
}

// Load builds a Config from defaults, the YAML file at path (or
// shortscribe.yaml in the working or user config directory when path is
// empty), an optional .env file and the environment. The result is not
// validated; call Validate once flags are applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	} else {
		for _, candidate := range defaultPaths() {
			err := cfg.loadFile(candidate)
			if err == nil {
				break
			}
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	// .env never overrides variables already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultPaths() []string {
	paths := []string{DefaultFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "shortscribe", DefaultFileName))
	}
	return paths
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadFromEnv() error {
	strs := map[string]*string{
		"LANGUAGE":           &c.Language,
		"PROVIDER":           &c.Provider,
		"YTDLP_PATH":         &c.YtdlpPath,
		"SPEECH_FALLBACK":    &c.SpeechFallback,
		"SPEECH_MODEL":       &c.SpeechModel,
		"TRANSLATE_TO":       &c.TranslateTo,
		"TRANSLATE_PROVIDER": &c.TranslateProvider,
		"TRANSLATE_MODEL":    &c.TranslateModel,
		"ADDR":               &c.ServerAddr,
	}
	for name, dst := range strs {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	keys := map[string]*string{
		"GEMINI_API_KEY":    &c.GeminiAPIKey,
		"OPENAI_API_KEY":    &c.OpenAIAPIKey,
		"ANTHROPIC_API_KEY": &c.AnthropicAPIKey,
	}
	for name, dst := range keys {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(envPrefix + "MAX_SHORTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_SHORTS: %w", envPrefix, err)
		}
		c.MaxShorts = n
	}
	if v := os.Getenv(envPrefix + "REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sREQUESTS_PER_SECOND: %w", envPrefix, err)
		}
		c.RequestsPerSecond = f
	}

	durations := map[string]*time.Duration{
		"YTDLP_TIMEOUT": &c.YtdlpTimeout,
		"HTTP_TIMEOUT":  &c.HTTPTimeout,
	}
	for name, dst := range durations {
		v := os.Getenv(envPrefix + name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}

	return nil
}

// APIKey returns the key configured for an LLM or speech provider.
func (c *Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		return c.GeminiAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("language must not be empty")
	}
	if c.MaxShorts < 1 || c.MaxShorts > pipeline.MaxShortsLimit {
		return fmt.Errorf("max_shorts must be between 1 and %d", pipeline.MaxShortsLimit)
	}
	switch c.Provider {
	case ProviderWatchPage, ProviderYtdlp:
	default:
		return fmt.Errorf("provider must be %q or %q, got %q", ProviderWatchPage, ProviderYtdlp, c.Provider)
	}
	if c.YtdlpTimeout <= 0 {
		return fmt.Errorf("ytdlp_timeout must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be non-negative")
	}

	switch c.SpeechFallback {
	case "", "none":
	case "gemini", "openai":
		if c.APIKey(c.SpeechFallback) == "" {
			return fmt.Errorf("speech_fallback %s needs an API key", c.SpeechFallback)
		}
	default:
		return fmt.Errorf("unsupported speech_fallback: %s", c.SpeechFallback)
	}

	if c.TranslateTo != "" {
		switch c.TranslateProvider {
		case "gemini", "openai", "anthropic":
		default:
			return fmt.Errorf("unsupported translate_provider: %s", c.TranslateProvider)
		}
		if c.APIKey(c.TranslateProvider) == "" {
			return fmt.Errorf("translate_provider %s needs an API key", c.TranslateProvider)
		}
	}

	return nil
}

// SpeechFallbackEnabled reports whether captionless videos go to speech-to-text.
func (c *Config) SpeechFallbackEnabled() bool {
	return c.SpeechFallback != "" && c.SpeechFallback != "none"
}
