package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/bestydev/woolworths-catalog-scraper/internal/browser"
	"github.com/bestydev/woolworths-catalog-scraper/internal/config"
	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
	"github.com/bestydev/woolworths-catalog-scraper/internal/parser"
)

// Woolworths implements Site for the Woolworths NZ online catalog. All DOM
// knowledge lives in the parser contract; this type only drives the browser
// and hands rendered HTML down to the parser.
type Woolworths struct {
	browser   *browser.Browser
	contract  parser.PageContract
	extractor *parser.Extractor
	cfg       config.ScraperConfig
	logger    *slog.Logger
}

func NewWoolworths(b *browser.Browser, cfg config.ScraperConfig) *Woolworths {
	contract := parser.WoolworthsContract()
	return &Woolworths{
		browser:   b,
		contract:  contract,
		extractor: parser.NewExtractor(contract, cfg.SourceSite),
		cfg:       cfg,
		logger:    slog.Default().With("component", "woolworths"),
	}
}

func (w *Woolworths) Name() string {
	return w.cfg.SourceSite
}

func (w *Woolworths) RootURL() string {
	return w.cfg.BaseURL
}

func (w *Woolworths) DiscoverCategories(ctx context.Context, page playwright.Page) ([]models.Category, error) {
	if !browser.WaitVisible(page, w.contract.FilterUI, w.cfg.WaitTimeout) {
		w.logger.Warn("category filter never rendered", "url", page.URL())
		return nil, nil
	}

	doc, err := w.document(page)
	if err != nil {
		return nil, err
	}

	categories := parser.ExtractCategories(doc, w.contract, w.cfg.BaseURL)
	w.logger.Info("categories discovered", "count", len(categories))
	return categories, nil
}

func (w *Woolworths) MaxPage(page playwright.Page) int {
	doc, err := w.document(page)
	if err != nil {
		w.logger.Warn("failed to read pagination", "error", err)
		return 0
	}
	return parser.MaxPageLabel(doc, w.contract)
}

func (w *Woolworths) FindEntries(page playwright.Page) ([]*goquery.Selection, error) {
	if !browser.WaitVisible(page, w.contract.Entry, w.cfg.WaitTimeout) {
		return nil, nil
	}

	doc, err := w.document(page)
	if err != nil {
		return nil, err
	}

	var entries []*goquery.Selection
	doc.Find(w.contract.Entry).Each(func(_ int, s *goquery.Selection) {
		entries = append(entries, s)
	})

	return entries, nil
}

func (w *Woolworths) ExtractProduct(ctx context.Context, entry *goquery.Selection) (*models.Product, bool) {
	product, ok := w.extractor.Extract(entry)
	if !ok {
		return nil, false
	}

	if detailPath, ok := w.extractor.DetailURL(entry); ok {
		product.CategoryPath = w.fetchBreadcrumbs(detailPath)
	}

	return product, true
}

// fetchBreadcrumbs opens the product detail page in its own tab and reads the
// breadcrumb trail. Any failure here degrades to an empty path; a product
// without categories is still worth keeping.
func (w *Woolworths) fetchBreadcrumbs(detailPath string) []string {
	url := detailPath
	if strings.HasPrefix(detailPath, "/") {
		url = parser.SiteRoot(w.cfg.BaseURL) + detailPath
	}

	page, err := w.browser.NewPage()
	if err != nil {
		w.logger.Warn("failed to open detail page", "error", err, "url", url)
		return nil
	}
	defer page.Close()

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		w.logger.Warn("failed to load detail page", "error", err, "url", url)
		return nil
	}

	time.Sleep(w.cfg.DetailPageDelay)

	doc, err := w.document(page)
	if err != nil {
		w.logger.Warn("failed to parse detail page", "error", err, "url", url)
		return nil
	}

	return parser.ExtractBreadcrumbs(doc, w.contract)
}

func (w *Woolworths) AdvancePage(ctx context.Context, page playwright.Page) (Advance, error) {
	next := page.Locator(w.contract.NextControl).First()

	count, err := next.Count()
	if err != nil || count == 0 {
		return Advance{Reason: ReasonNextControlMissing}, nil
	}

	visible, err := next.IsVisible()
	if err != nil || !visible {
		return Advance{Reason: ReasonNextControlMissing}, nil
	}

	itemClass, _ := page.Locator(w.contract.NextItem).First().GetAttribute("class")
	anchorClass, _ := next.GetAttribute("class")
	if nextControlDisabled(itemClass, anchorClass) {
		return Advance{Reason: ReasonNextControlDisabled}, nil
	}

	beforeURL := page.URL()
	beforeEntry := w.firstEntryID(page)

	if err := next.ScrollIntoViewIfNeeded(); err != nil {
		return Advance{}, fmt.Errorf("failed to scroll to next control: %w", err)
	}
	if err := next.Click(); err != nil {
		return Advance{}, fmt.Errorf("failed to click next control: %w", err)
	}

	if !w.waitForPageTurn(page, beforeURL, beforeEntry) {
		return Advance{Reason: ReasonAdvanceTimeout}, nil
	}

	return Advance{Next: true}, nil
}

// waitForPageTurn polls for evidence that the click actually landed on a new
// page. The previous page's entries stay rendered while the click is pending,
// so visibility alone proves nothing; the wait ends only on a changed URL or
// a changed leading entry, within a single wait-timeout budget.
func (w *Woolworths) waitForPageTurn(page playwright.Page, previousURL, previousEntry string) bool {
	deadline := time.Now().Add(w.cfg.WaitTimeout)

	for time.Now().Before(deadline) {
		if pageTurned(previousURL, page.URL(), previousEntry, w.firstEntryID(page)) {
			return true
		}
		time.Sleep(250 * time.Millisecond)
	}

	return false
}

// firstEntryID fingerprints the current listing page by the DOM id of the
// first entry's title element. Empty when no entry has rendered yet.
func (w *Woolworths) firstEntryID(page playwright.Page) string {
	title := page.Locator(w.contract.Entry).First().Locator(w.contract.Title).First()

	count, err := title.Count()
	if err != nil || count == 0 {
		return ""
	}

	id, err := title.GetAttribute("id")
	if err != nil {
		return ""
	}
	return id
}

// pageTurned reports whether the observed URL or leading entry differs from
// the pre-click state. An empty current entry means the next page has not
// rendered its listing yet and is never taken as evidence of a turn.
func pageTurned(previousURL, currentURL, previousEntry, currentEntry string) bool {
	if currentURL != previousURL {
		return true
	}
	return currentEntry != "" && currentEntry != previousEntry
}

// nextControlDisabled checks the disabled marker on both the pagination item
// and its anchor; either one carrying it ends the traversal.
func nextControlDisabled(itemClass, anchorClass string) bool {
	return strings.Contains(itemClass, "disabled") || strings.Contains(anchorClass, "disabled")
}

func (w *Woolworths) document(page playwright.Page) (*goquery.Document, error) {
	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page content: %w", err)
	}

	return doc, nil
}
