package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/bestydev/woolworths-catalog-scraper/internal/config"
	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

// Navigator is the slice of the browser session the crawler needs.
type Navigator interface {
	NavigateWithRetry(page playwright.Page, url string, maxRetries int, delay time.Duration) error
}

// CategoryResult is everything one category traversal produced.
type CategoryResult struct {
	Category  models.Category
	Products  []*models.Product
	Pages     int
	Reason    TerminationReason
	Abandoned bool
}

// Crawler walks one category at a time: load the listing page, extract every
// entry on it, then advance, until one of the stopping conditions fires.
// Extraction of the current page always completes before any stop decision,
// so a single-page category is scanned even when no pagination widget exists.
type Crawler struct {
	nav    Navigator
	site   Site
	cfg    config.ScraperConfig
	logger *slog.Logger
}

func NewCrawler(nav Navigator, site Site, cfg config.ScraperConfig) *Crawler {
	return &Crawler{
		nav:    nav,
		site:   site,
		cfg:    cfg,
		logger: slog.Default().With("component", "crawler"),
	}
}

func (c *Crawler) CrawlCategory(ctx context.Context, page playwright.Page, category models.Category) (CategoryResult, error) {
	result := CategoryResult{Category: category}

	if err := c.nav.NavigateWithRetry(page, category.URL, c.cfg.MaxRetries, c.cfg.PageLoadDelay); err != nil {
		result.Abandoned = true
		result.Reason = ReasonNavigationFailed
		return result, fmt.Errorf("failed to open category %q: %w", category.Name, err)
	}

	maxPage := c.site.MaxPage(page)
	c.logger.Info("crawling category", "category", category.Name, "maxPage", maxPage)

	currentPage := 1

	for {
		if err := ctx.Err(); err != nil {
			result.Abandoned = true
			result.Reason = ReasonNavigationFailed
			return result, err
		}

		entries, err := c.site.FindEntries(page)
		if err != nil {
			result.Abandoned = true
			result.Reason = ReasonNavigationFailed
			return result, fmt.Errorf("failed to read entries in %q: %w", category.Name, err)
		}
		if len(entries) == 0 {
			result.Reason = ReasonNoEntries
			break
		}

		result.Pages = currentPage

		for _, entry := range entries {
			product, ok := c.site.ExtractProduct(ctx, entry)
			if !ok {
				continue
			}
			result.Products = append(result.Products, product)
			time.Sleep(c.cfg.EntryDelay)
		}

		c.logger.Info("page extracted",
			"category", category.Name,
			"page", currentPage,
			"entries", len(entries),
			"products", len(result.Products))

		if maxPage <= currentPage {
			result.Reason = ReasonMaxPageReached
			break
		}

		advance, err := c.site.AdvancePage(ctx, page)
		if err != nil {
			result.Abandoned = true
			result.Reason = ReasonNavigationFailed
			return result, fmt.Errorf("failed to advance in %q: %w", category.Name, err)
		}
		if !advance.Next {
			result.Reason = advance.Reason
			break
		}

		currentPage++
		time.Sleep(c.cfg.PageLoadDelay)
	}

	c.logger.Info("category done",
		"category", category.Name,
		"pages", result.Pages,
		"products", len(result.Products),
		"reason", result.Reason)

	return result, nil
}
