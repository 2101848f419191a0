package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecopantry/ecopantry/internal/chat"
	"github.com/ecopantry/ecopantry/internal/config"
	"github.com/ecopantry/ecopantry/internal/database"
	"github.com/ecopantry/ecopantry/internal/logging"
	"github.com/ecopantry/ecopantry/internal/push"
	"github.com/ecopantry/ecopantry/internal/server"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "vapid-keys" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("ECOPANTRY_VAPID_PUBLIC_KEY=%s\nECOPANTRY_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	completer, err := newCompleter(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to create chat client", "error", err)
		os.Exit(1)
	}

	opts := server.Options{
		JWTSecret:        cfg.JWTSecret,
		CookieSecure:     cfg.CookieSecure,
		OriginPatterns:   cfg.OriginPatterns,
		TrustProxy:       cfg.TrustProxy,
		Completer:        completer,
		ChatOptions:      []chat.Option{chat.WithModel(cfg.ChatModel)},
		ReminderInterval: cfg.ReminderInterval,
	}
	if cfg.PushEnabled() {
		opts.Push = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
	} else {
		slog.Info("push notifications disabled, set ECOPANTRY_VAPID_PUBLIC_KEY and ECOPANTRY_VAPID_PRIVATE_KEY to enable")
	}

	srv := server.New(db, opts, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Chat completions may take up to the client timeout.
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(bgCtx)
		defer sched.Stop()
	}

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(bgCtx); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-bgCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("EcoPantry running", "addr", "http://localhost:"+cfg.Port, "chat_provider", cfg.ChatProvider, "push", cfg.PushEnabled())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	bgCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newCompleter picks the chat backend. A nil Completer turns the assistant off.
func newCompleter(ctx context.Context, cfg config.Config) (chat.Completer, error) {
	switch cfg.ChatProvider {
	case config.ProviderGemini:
		c, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			slog.Warn("chat disabled, no OpenAI API key configured")
			return nil, nil
		}
		return chat.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	default:
		return nil, nil
	}
}
