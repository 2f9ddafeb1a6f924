package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	rankbotroot "github.com/set-night/rankbot"
	"github.com/set-night/rankbot/internal/client"
	"github.com/set-night/rankbot/internal/config"
	"github.com/set-night/rankbot/internal/handler"
	"github.com/set-night/rankbot/internal/middleware"
	"github.com/set-night/rankbot/internal/repository"
	"github.com/set-night/rankbot/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session archive: Postgres when configured, in-memory otherwise.
	var store repository.SessionStore = repository.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		migrationsFS, err := fs.Sub(rankbotroot.MigrationsFS, "migrations")
		if err != nil {
			slog.Error("failed to load embedded migrations", "error", err)
			os.Exit(1)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		store = repository.NewPostgresStore(pool)
		slog.Info("session archive enabled")
	} else {
		slog.Info("no DATABASE_URL set, sessions are memory-only")
	}

	// Initialize services
	pipeline := client.New(cfg)
	sessions := service.NewSessionService(store)
	orchestrator := service.NewOrchestrator(pipeline, cfg)

	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(config.RateLimitPerMinute),
		),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:          b,
		Cfg:          cfg,
		Sessions:     sessions,
		Orchestrator: orchestrator,
		Pipeline:     pipeline,
	})

	// Register all handlers
	h.Register()

	// Register default text handler for ranking queries
	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		if len(update.Message.Text) > 0 && update.Message.Text[0] == '/' {
			return
		}
		if update.Message.Chat.Type == "private" {
			h.HandleTextPrivate(ctx, b, update)
		}
	})

	// Start bot
	slog.Info("starting bot",
		"crawl_backend", cfg.CrawlBaseURL,
		"chat_backend", cfg.ChatBaseURL,
	)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}
