package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/bestydev/woolworths-catalog-scraper/internal/config"
	"github.com/bestydev/woolworths-catalog-scraper/internal/frappe"
	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

// Session is the slice of the browser the service needs to run a full sweep.
type Session interface {
	Navigator
	NewPage() (playwright.Page, error)
}

// Reconciler pushes one product into the catalog of record.
type Reconciler interface {
	Upsert(ctx context.Context, p *models.Product) (frappe.Action, error)
}

// ProductWriter persists every extracted product to the run's output artifact.
type ProductWriter interface {
	Write(p *models.Product) error
	Path() string
}

// SnapshotStore keeps a queryable copy of the latest extraction per product.
type SnapshotStore interface {
	UpsertProduct(ctx context.Context, p *models.Product) error
}

// EventPublisher announces each successfully reconciled product.
type EventPublisher interface {
	PublishProductSynced(ctx context.Context, p *models.Product, action frappe.Action, runID string) error
}

// RunSummary is the final accounting of one full catalog sweep.
type RunSummary struct {
	RunID        string    `json:"runId"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	Categories   int       `json:"categories"`
	Abandoned    int       `json:"abandoned"`
	Products     int       `json:"products"`
	Created      int       `json:"created"`
	Updated      int       `json:"updated"`
	CreateFailed int       `json:"createFailed"`
	Failed       int       `json:"failed"`
	OutputPath   string    `json:"outputPath,omitempty"`
}

// Service runs the whole pipeline end to end: discover categories, crawl each
// one, and reconcile every product as it is extracted. Everything happens on
// the calling goroutine; the only concurrency is the browser's own.
type Service struct {
	session    Session
	site       Site
	crawler    *Crawler
	reconciler Reconciler
	writer     ProductWriter
	snapshots  SnapshotStore
	events     EventPublisher
	cfg        config.ScraperConfig
	logger     *slog.Logger
}

func NewService(session Session, site Site, reconciler Reconciler, writer ProductWriter, cfg config.ScraperConfig) *Service {
	return &Service{
		session:    session,
		site:       site,
		crawler:    NewCrawler(session, site, cfg),
		reconciler: reconciler,
		writer:     writer,
		cfg:        cfg,
		logger:     slog.Default().With("component", "service"),
	}
}

// WithSnapshots enables the optional database sink.
func (s *Service) WithSnapshots(store SnapshotStore) *Service {
	s.snapshots = store
	return s
}

// WithEvents enables the optional stream publisher.
func (s *Service) WithEvents(pub EventPublisher) *Service {
	s.events = pub
	return s
}

func (s *Service) Run(ctx context.Context) (summary RunSummary, err error) {
	summary = RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	defer func() {
		summary.FinishedAt = time.Now()
		if s.writer != nil {
			summary.OutputPath = s.writer.Path()
		}
	}()

	logger := s.logger.With("runId", summary.RunID, "site", s.site.Name())
	logger.Info("run started", "rootUrl", s.site.RootURL())

	page, err := s.session.NewPage()
	if err != nil {
		return summary, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if page != nil {
			page.Close()
		}
	}()

	if err := s.session.NavigateWithRetry(page, s.site.RootURL(), s.cfg.MaxRetries, s.cfg.PageLoadDelay); err != nil {
		return summary, fmt.Errorf("failed to open catalog root: %w", err)
	}

	categories, err := s.site.DiscoverCategories(ctx, page)
	if err != nil {
		return summary, fmt.Errorf("category discovery failed: %w", err)
	}
	if len(categories) == 0 {
		logger.Warn("no categories discovered, nothing to do")
		return summary, nil
	}

	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := s.crawler.CrawlCategory(ctx, page, category)
		summary.Categories++
		if result.Abandoned {
			summary.Abandoned++
			logger.Error("category abandoned", "category", category.Name, "error", err)
		}

		for _, product := range result.Products {
			s.handleProduct(ctx, logger, product, &summary)
		}

		time.Sleep(s.cfg.PageLoadDelay)
	}

	logger.Info("run finished",
		"categories", summary.Categories,
		"abandoned", summary.Abandoned,
		"products", summary.Products,
		"created", summary.Created,
		"updated", summary.Updated,
		"createFailed", summary.CreateFailed,
		"failed", summary.Failed)

	return summary, nil
}

func (s *Service) handleProduct(ctx context.Context, logger *slog.Logger, product *models.Product, summary *RunSummary) {
	summary.Products++

	if s.writer != nil {
		if err := s.writer.Write(product); err != nil {
			logger.Error("failed to write product to output", "error", err, "productId", product.ID)
		}
	}

	action, err := s.reconciler.Upsert(ctx, product)
	if err != nil {
		summary.Failed++
		logger.Error("failed to sync product", "error", err, "productId", product.ID)
		return
	}

	switch action {
	case frappe.ActionCreated:
		summary.Created++
	case frappe.ActionUpdated:
		summary.Updated++
	case frappe.ActionCreateFailed:
		summary.CreateFailed++
	}

	if s.snapshots != nil {
		if err := s.snapshots.UpsertProduct(ctx, product); err != nil {
			logger.Error("failed to store snapshot", "error", err, "productId", product.ID)
		}
	}

	// A swallowed create wrote nothing remotely, so nothing was synced.
	if s.events != nil && action != frappe.ActionCreateFailed {
		if err := s.events.PublishProductSynced(ctx, product, action, summary.RunID); err != nil {
			logger.Error("failed to publish sync event", "error", err, "productId", product.ID)
		}
	}
}
