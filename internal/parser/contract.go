package parser

// PageContract holds the CSS selectors the target site's rendered markup is
// expected to satisfy. All parsing goes through a contract value so a site
// redesign (or a second site) only touches selectors, not extraction logic.
type PageContract struct {
	// Category discovery
	FilterUI       string
	CategoryAnchor string

	// Listing pages
	Entry       string
	Title       string
	Image       string
	Price       string
	PriceWhole  string
	PriceCents  string
	UnitPrice   string
	DetailLink  string
	Pagination  string
	NextItem    string
	NextControl string

	// Product detail pages
	BreadcrumbContainer string
	BreadcrumbItem      string
	BreadcrumbLink      string
	BreadcrumbLabel     string
}

// WoolworthsContract matches the woolworths.co.nz rendering as of the current
// cdx component library.
func WoolworthsContract() PageContract {
	return PageContract{
		FilterUI:       "cdx-search-filters",
		CategoryAnchor: "a.dasFacetHref",

		Entry:       "cdx-card product-stamp-grid div.product-entry",
		Title:       "h3[id*='-title']",
		Image:       "img[alt]",
		Price:       "product-price div h3",
		PriceWhole:  "em",
		PriceCents:  "span",
		UnitPrice:   "span.cupPrice",
		DetailLink:  "a[href*='productdetails']",
		Pagination:  "ul.pagination li a",
		NextItem:    "li.next",
		NextControl: "li.next a",

		BreadcrumbContainer: "cdx-breadcrumb",
		BreadcrumbItem:      "li",
		BreadcrumbLink:      "a",
		BreadcrumbLabel:     "span",
	}
}
