package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolates Load from the caller's working directory and environment
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, name := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"SHORTSCRIBE_LANGUAGE", "SHORTSCRIBE_MAX_SHORTS", "SHORTSCRIBE_PROVIDER",
		"SHORTSCRIBE_YTDLP_PATH", "SHORTSCRIBE_YTDLP_TIMEOUT", "SHORTSCRIBE_HTTP_TIMEOUT",
		"SHORTSCRIBE_REQUESTS_PER_SECOND", "SHORTSCRIBE_SPEECH_FALLBACK", "SHORTSCRIBE_SPEECH_MODEL",
		"SHORTSCRIBE_TRANSLATE_TO", "SHORTSCRIBE_TRANSLATE_PROVIDER", "SHORTSCRIBE_TRANSLATE_MODEL",
		"SHORTSCRIBE_ADDR",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 50, cfg.MaxShorts)
	assert.Equal(t, ProviderWatchPage, cfg.Provider)
}

func TestLoadLayering(t *testing.T) {
	dir := isolate(t)

	writeFile(t, filepath.Join(dir, DefaultFileName), `
language: es
max_shorts: 20
provider: ytdlp
ytdlp_timeout: 90s
translate_to: French
`)
	writeFile(t, filepath.Join(dir, ".env"), "GEMINI_API_KEY=from-dotenv\nSHORTSCRIBE_MAX_SHORTS=30\n")
	t.Setenv("SHORTSCRIBE_MAX_SHORTS", "40")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "es", cfg.Language)
	assert.Equal(t, ProviderYtdlp, cfg.Provider)
	assert.Equal(t, 90*time.Second, cfg.YtdlpTimeout)
	assert.Equal(t, "French", cfg.TranslateTo)
	// environment beats .env, .env beats the file
	assert.Equal(t, 40, cfg.MaxShorts)
	assert.Equal(t, "from-dotenv", cfg.GeminiAPIKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoadExplicitPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "server_addr: 127.0.0.1:9000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "malformed yaml", yaml: "language: [unclosed\n"},
		{name: "bad max shorts", env: map[string]string{"SHORTSCRIBE_MAX_SHORTS": "lots"}},
		{name: "bad duration", env: map[string]string{"SHORTSCRIBE_YTDLP_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.yaml != "" {
				writeFile(t, filepath.Join(dir, DefaultFileName), tt.yaml)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "empty language", modify: func(c *Config) { c.Language = " " }, wantErr: true},
		{name: "zero max shorts", modify: func(c *Config) { c.MaxShorts = 0 }, wantErr: true},
		{name: "max shorts over limit", modify: func(c *Config) { c.MaxShorts = 501 }, wantErr: true},
		{name: "unknown provider", modify: func(c *Config) { c.Provider = "api" }, wantErr: true},
		{name: "zero ytdlp timeout", modify: func(c *Config) { c.YtdlpTimeout = 0 }, wantErr: true},
		{name: "negative rps", modify: func(c *Config) { c.RequestsPerSecond = -1 }, wantErr: true},
		{name: "unlimited rps", modify: func(c *Config) { c.RequestsPerSecond = 0 }},
		{name: "speech fallback without key", modify: func(c *Config) { c.SpeechFallback = "openai" }, wantErr: true},
		{
			name: "speech fallback with key",
			modify: func(c *Config) {
				c.SpeechFallback = "openai"
				c.OpenAIAPIKey = "k"
			},
		},
		{name: "speech fallback none", modify: func(c *Config) { c.SpeechFallback = "none" }},
		{name: "unknown speech fallback", modify: func(c *Config) { c.SpeechFallback = "whisper" }, wantErr: true},
		{name: "translate without key", modify: func(c *Config) { c.TranslateTo = "German" }, wantErr: true},
		{
			name: "translate with anthropic",
			modify: func(c *Config) {
				c.TranslateTo = "German"
				c.TranslateProvider = "anthropic"
				c.AnthropicAPIKey = "k"
			},
		},
		{
			name: "translate unknown provider",
			modify: func(c *Config) {
				c.TranslateTo = "German"
				c.TranslateProvider = "deepl"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSpeechFallbackEnabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.SpeechFallbackEnabled())
	cfg.SpeechFallback = "none"
	assert.False(t, cfg.SpeechFallbackEnabled())
	cfg.SpeechFallback = "gemini"
	assert.True(t, cfg.SpeechFallbackEnabled())
}

func TestAPIKey(t *testing.T) {
	cfg := &Config{GeminiAPIKey: "g", OpenAIAPIKey: "o", AnthropicAPIKey: "a"}
	assert.Equal(t, "g", cfg.APIKey("Gemini"))
	assert.Equal(t, "o", cfg.APIKey("openai"))
	assert.Equal(t, "a", cfg.APIKey("anthropic"))
	assert.Empty(t, cfg.APIKey("groq"))
}
