package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

// ExtractCategories parses the category-filter anchors of the catalog root.
// Labels carry a trailing parenthesized result count ("Fruit (120)") which is
// stripped; anchors without a resolvable href are skipped; duplicates by URL
// are dropped, keeping document order. Root-relative hrefs already carry the
// full site path, so they are resolved against the host of baseURL, not
// against baseURL itself.
func ExtractCategories(doc *goquery.Document, contract PageContract, baseURL string) []models.Category {
	var categories []models.Category
	seen := make(map[string]bool)
	root := SiteRoot(baseURL)

	doc.Find(contract.CategoryAnchor).Each(func(_ int, anchor *goquery.Selection) {
		href, ok := anchor.Attr("href")
		if !ok || href == "" {
			return
		}

		name, _, _ := strings.Cut(strings.TrimSpace(anchor.Text()), " (")

		url := href
		if strings.HasPrefix(url, "/") {
			url = root + url
		}
		if seen[url] {
			return
		}
		seen[url] = true

		categories = append(categories, models.Category{Name: name, URL: url})
	})

	return categories
}

// SiteRoot strips the path off a URL, leaving scheme and host, so that
// root-relative hrefs can be absolutized. A URL without a path after the host
// is returned unchanged.
func SiteRoot(baseURL string) string {
	if idx := strings.Index(baseURL, "://"); idx >= 0 {
		if slash := strings.Index(baseURL[idx+3:], "/"); slash >= 0 {
			return baseURL[:idx+3+slash]
		}
	}
	return baseURL
}

// MaxPageLabel scans the pagination control for the highest numeric page
// label. A page without numeric labels reports 0.
func MaxPageLabel(doc *goquery.Document, contract PageContract) int {
	maxPage := 0
	doc.Find(contract.Pagination).Each(func(_ int, label *goquery.Selection) {
		n, err := strconv.Atoi(strings.TrimSpace(label.Text()))
		if err != nil {
			return
		}
		if n > maxPage {
			maxPage = n
		}
	})
	return maxPage
}
