package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

// TerminationReason records why a category traversal stopped.
type TerminationReason string

const (
	ReasonMaxPageReached      TerminationReason = "max_page_reached"
	ReasonNoEntries           TerminationReason = "no_entries"
	ReasonNextControlMissing  TerminationReason = "next_control_missing"
	ReasonNextControlDisabled TerminationReason = "next_control_disabled"
	ReasonAdvanceTimeout      TerminationReason = "advance_timeout"
	ReasonNavigationFailed    TerminationReason = "navigation_failed"
)

// Advance is the outcome of one attempt to move to the next listing page.
// When Next is false, Reason says which stopping condition fired.
type Advance struct {
	Next   bool
	Reason TerminationReason
}

// Site abstracts the retailer-specific mechanics of one catalog: where its
// browse tree lives, how listing entries are found on a rendered page, and
// how pagination is driven. The crawler only ever talks to this interface.
type Site interface {
	Name() string

	// RootURL is the landing page where category discovery starts.
	RootURL() string

	// DiscoverCategories reads the category links off the current page.
	// An empty slice is a valid result when the category UI never renders.
	DiscoverCategories(ctx context.Context, page playwright.Page) ([]models.Category, error)

	// MaxPage reports the highest page number visible in the pagination
	// widget, or 0 when the widget is absent.
	MaxPage(page playwright.Page) int

	// FindEntries returns the listing entry nodes of the current page.
	FindEntries(page playwright.Page) ([]*goquery.Selection, error)

	// ExtractProduct turns one listing entry into a product. The second
	// return value is false when the entry does not carry the minimum
	// fields and must be skipped.
	ExtractProduct(ctx context.Context, entry *goquery.Selection) (*models.Product, bool)

	// AdvancePage drives the pagination control and waits for the next
	// page of entries to land.
	AdvancePage(ctx context.Context, page playwright.Page) (Advance, error)
}
