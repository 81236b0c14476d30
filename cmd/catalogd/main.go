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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/bestydev/woolworths-catalog-scraper/internal/api"
	"github.com/bestydev/woolworths-catalog-scraper/internal/browser"
	"github.com/bestydev/woolworths-catalog-scraper/internal/config"
	"github.com/bestydev/woolworths-catalog-scraper/internal/database"
	"github.com/bestydev/woolworths-catalog-scraper/internal/events"
	"github.com/bestydev/woolworths-catalog-scraper/internal/frappe"
	"github.com/bestydev/woolworths-catalog-scraper/internal/jobs"
	"github.com/bestydev/woolworths-catalog-scraper/internal/scraper"
	"github.com/bestydev/woolworths-catalog-scraper/internal/storage"
)

// catalogd exposes the catalog sweep over HTTP: runs are started and
// inspected through the API instead of a one-shot process.
func main() {
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

	ctx, cancel := context.WithCancel(context.Background())
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

	site := scraper.NewWoolworths(b, cfg.Scraper)
	reconciler := frappe.NewClient(cfg.Frappe)

	runner := &runFactory{
		session:    b,
		site:       site,
		reconciler: reconciler,
		cfg:        cfg,
		logger:     logger,
	}

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

		runner.snapshots = database.NewSnapshotStore(db)
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

		runner.events = events.NewPublisher(redisClient, cfg.Redis.Stream)
	}

	jobManager := jobs.NewManager(runner)
	handlers := api.NewHandlers(jobManager, ctx)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", handlers.CreateRun)
		r.Get("/runs", handlers.ListRuns)
		r.Get("/runs/{runID}", handlers.GetRun)
		r.Get("/stats", handlers.GetStats)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// runFactory builds a fresh service per sweep so each run gets its own
// timestamped output file.
type runFactory struct {
	session    scraper.Session
	site       scraper.Site
	reconciler scraper.Reconciler
	snapshots  scraper.SnapshotStore
	events     scraper.EventPublisher
	cfg        *config.Config
	logger     *slog.Logger
}

func (f *runFactory) Run(ctx context.Context) (scraper.RunSummary, error) {
	writer, err := storage.NewRunWriter(f.cfg.Scraper.OutputDir, "woolworths_products")
	if err != nil {
		return scraper.RunSummary{}, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			f.logger.Error("failed to close output file", "error", err)
		}
	}()

	service := scraper.NewService(f.session, f.site, f.reconciler, writer, f.cfg.Scraper)
	if f.snapshots != nil {
		service.WithSnapshots(f.snapshots)
	}
	if f.events != nil {
		service.WithEvents(f.events)
	}

	return service.Run(ctx)
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
