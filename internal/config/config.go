// Package config reads server settings from ECOPANTRY_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Chat providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	// CookieSecure marks the session cookie Secure; enable behind HTTPS.
	CookieSecure bool
	JWTSecret    string
	// OriginPatterns are extra hosts allowed to open the websocket.
	OriginPatterns []string
	// TrustProxy honors CF-Connecting-IP and X-Forwarded-For when keying
	// per-IP rate limits. Only enable behind a proxy that sets them.
	TrustProxy bool

	ChatProvider  string
	ChatModel     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string

	VAPIDPublicKey   string
	VAPIDPrivateKey  string
	VAPIDSubscriber  string
	ReminderInterval time.Duration
}

// Load reads the given .env files (default ".env") if they exist, then the
// environment. Variables already set in the environment win.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a getenv function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv("ECOPANTRY_" + key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:            get("PORT", "8080"),
		DBPath:          get("DB_PATH", "ecopantry.db"),
		LogLevel:        get("LOG_LEVEL", "info"),
		LogFormat:       get("LOG_FORMAT", "text"),
		JWTSecret:       get("JWT_SECRET", ""),
		ChatProvider:    strings.ToLower(get("CHAT_PROVIDER", ProviderOpenAI)),
		ChatModel:       get("CHAT_MODEL", ""),
		OpenAIAPIKey:    get("OPENAI_API_KEY", getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:   get("OPENAI_BASE_URL", ""),
		GeminiAPIKey:    get("GEMINI_API_KEY", getenv("GEMINI_API_KEY")),
		VAPIDPublicKey:  get("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: get("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber: get("VAPID_SUBSCRIBER", "mailto:admin@ecopantry.local"),
	}

	for _, o := range strings.Split(get("ALLOWED_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.OriginPatterns = append(cfg.OriginPatterns, o)
		}
	}

	var err error
	if cfg.CookieSecure, err = strconv.ParseBool(get("COOKIE_SECURE", "false")); err != nil {
		return Config{}, fmt.Errorf("parse ECOPANTRY_COOKIE_SECURE: %w", err)
	}
	if cfg.TrustProxy, err = strconv.ParseBool(get("TRUST_PROXY", "false")); err != nil {
		return Config{}, fmt.Errorf("parse ECOPANTRY_TRUST_PROXY: %w", err)
	}
	if cfg.ReminderInterval, err = time.ParseDuration(get("REMINDER_INTERVAL", "1h")); err != nil {
		return Config{}, fmt.Errorf("parse ECOPANTRY_REMINDER_INTERVAL: %w", err)
	}
	if cfg.ReminderInterval <= 0 {
		return Config{}, fmt.Errorf("ECOPANTRY_REMINDER_INTERVAL must be positive")
	}

	switch cfg.ChatProvider {
	case ProviderOpenAI:
		if cfg.ChatModel == "" {
			cfg.ChatModel = "gpt-4o-mini"
		}
	case ProviderGemini:
		if cfg.ChatModel == "" {
			cfg.ChatModel = DefaultGeminiModel
		}
		if cfg.GeminiAPIKey == "" {
			return Config{}, fmt.Errorf("ECOPANTRY_GEMINI_API_KEY is required for the gemini chat provider")
		}
	case ProviderNone:
	default:
		return Config{}, fmt.Errorf("unknown chat provider %q", cfg.ChatProvider)
	}

	return cfg, nil
}

// PushEnabled reports whether both VAPID keys are configured.
func (c Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
