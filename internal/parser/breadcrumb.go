package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractBreadcrumbs collects the breadcrumb trail of a product detail page,
// root first, current product last. Items carrying a link use the link text;
// the terminal, non-linked item falls back to its plain label element. A page
// without the breadcrumb container yields an empty trail.
func ExtractBreadcrumbs(doc *goquery.Document, contract PageContract) []string {
	container := doc.Find(contract.BreadcrumbContainer).First()
	if container.Length() == 0 {
		return nil
	}

	var trail []string
	container.Find(contract.BreadcrumbItem).Each(func(_ int, item *goquery.Selection) {
		if link := item.Find(contract.BreadcrumbLink).First(); link.Length() > 0 {
			if text := strings.TrimSpace(link.Text()); text != "" {
				trail = append(trail, text)
				return
			}
		}
		if label := item.Find(contract.BreadcrumbLabel).First(); label.Length() > 0 {
			if text := strings.TrimSpace(label.Text()); text != "" {
				trail = append(trail, text)
			}
		}
	})

	return trail
}
