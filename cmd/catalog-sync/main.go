package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/bestydev/woolworths-catalog-scraper/internal/browser"
	"github.com/bestydev/woolworths-catalog-scraper/internal/config"
	"github.com/bestydev/woolworths-catalog-scraper/internal/database"
	"github.com/bestydev/woolworths-catalog-scraper/internal/events"
	"github.com/bestydev/woolworths-catalog-scraper/internal/frappe"
	"github.com/bestydev/woolworths-catalog-scraper/internal/scraper"
	"github.com/bestydev/woolworths-catalog-scraper/internal/storage"
)

func main() {
	// .env is a local convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	writer, err := storage.NewRunWriter(cfg.Scraper.OutputDir, "woolworths_products")
	if err != nil {
		logger.Error("failed to create output file", "error", err)
		os.Exit(1)
	}
	defer writer.Close()

	site := scraper.NewWoolworths(b, cfg.Scraper)
	reconciler := frappe.NewClient(cfg.Frappe)
	service := scraper.NewService(b, site, reconciler, writer, cfg.Scraper)

	if cfg.Database.Enabled {
		db, err := database.New(ctx, database.Config{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			Database:    cfg.Database.DBName,
			MaxConns:    cfg.Database.MaxConns,
			MinConns:    1,
			MaxConnLife: time.Hour,
			MaxConnIdle: 30 * time.Minute,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		service.WithSnapshots(database.NewSnapshotStore(db))
	}

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}

		service.WithEvents(events.NewPublisher(redisClient, cfg.Redis.Stream))
	}

	summary, err := service.Run(ctx)

	logger.Info("sync summary",
		"runId", summary.RunID,
		"categories", summary.Categories,
		"abandoned", summary.Abandoned,
		"products", summary.Products,
		"created", summary.Created,
		"updated", summary.Updated,
		"createFailed", summary.CreateFailed,
		"failed", summary.Failed,
		"output", summary.OutputPath,
		"duration", summary.FinishedAt.Sub(summary.StartedAt).String())

	if err != nil {
		logger.Error("sync failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
