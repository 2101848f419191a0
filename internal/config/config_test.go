package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ecopantry.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ProviderOpenAI, cfg.ChatProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, time.Hour, cfg.ReminderInterval)
	assert.False(t, cfg.CookieSecure)
	assert.False(t, cfg.TrustProxy)
	assert.False(t, cfg.PushEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"ECOPANTRY_PORT":              "9000",
		"ECOPANTRY_CHAT_PROVIDER":     "Gemini",
		"ECOPANTRY_GEMINI_API_KEY":    "g-key",
		"ECOPANTRY_REMINDER_INTERVAL": "15m",
		"ECOPANTRY_COOKIE_SECURE":     "true",
		"ECOPANTRY_TRUST_PROXY":       "1",
		"ECOPANTRY_VAPID_PUBLIC_KEY":  "pub",
		"ECOPANTRY_VAPID_PRIVATE_KEY": "priv",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.ChatProvider)
	assert.Equal(t, DefaultGeminiModel, cfg.ChatModel)
	assert.Equal(t, 15*time.Minute, cfg.ReminderInterval)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.TrustProxy)
	assert.True(t, cfg.PushEnabled())
}

func TestFromEnvFallsBackToUnprefixedAPIKey(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"OPENAI_API_KEY": "sk-plain"}))
	require.NoError(t, err)
	assert.Equal(t, "sk-plain", cfg.OpenAIAPIKey)
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"bad interval":       {"ECOPANTRY_REMINDER_INTERVAL": "soon"},
		"negative interval":  {"ECOPANTRY_REMINDER_INTERVAL": "-1h"},
		"bad bool":           {"ECOPANTRY_COOKIE_SECURE": "maybe"},
		"bad trust proxy":    {"ECOPANTRY_TRUST_PROXY": "sometimes"},
		"unknown provider":   {"ECOPANTRY_CHAT_PROVIDER": "clippy"},
		"gemini without key": {"ECOPANTRY_CHAT_PROVIDER": "gemini"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ECOPANTRY_DB_PATH=from-dotenv.db\n"), 0o600))
	t.Setenv("ECOPANTRY_DB_PATH", "")
	os.Unsetenv("ECOPANTRY_DB_PATH")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.DBPath)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestFromEnvOriginPatterns(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"ECOPANTRY_ALLOWED_ORIGINS": "app.example.com, *.example.org ,",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"app.example.com", "*.example.org"}, cfg.OriginPatterns)
}
