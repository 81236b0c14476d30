package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractBreadcrumbs_RootFirstLeafLast(t *testing.T) {
	doc := docFromHTML(t, `
		<cdx-breadcrumb>
			<ul>
				<li><a href="/">Home</a></li>
				<li><a href="/shop/browse/fruit-veg">Fruit &amp; Veg</a></li>
				<li><a href="/shop/browse/fruit-veg/fruit">Fruit</a></li>
				<li><span>Bananas</span></li>
			</ul>
		</cdx-breadcrumb>`)

	trail := ExtractBreadcrumbs(doc, WoolworthsContract())
	assert.Equal(t, []string{"Home", "Fruit & Veg", "Fruit", "Bananas"}, trail)
}

func TestExtractBreadcrumbs_MissingContainer(t *testing.T) {
	doc := docFromHTML(t, `<div><p>no breadcrumbs here</p></div>`)

	trail := ExtractBreadcrumbs(doc, WoolworthsContract())
	assert.Empty(t, trail)
}

func TestExtractBreadcrumbs_EmptyLinkFallsBackToLabel(t *testing.T) {
	doc := docFromHTML(t, `
		<cdx-breadcrumb>
			<ul>
				<li><a href="/">Home</a></li>
				<li><a href="/x">  </a><span>Pantry</span></li>
			</ul>
		</cdx-breadcrumb>`)

	trail := ExtractBreadcrumbs(doc, WoolworthsContract())
	assert.Equal(t, []string{"Home", "Pantry"}, trail)
}

func TestExtractBreadcrumbs_SkipsEmptyItems(t *testing.T) {
	doc := docFromHTML(t, `
		<cdx-breadcrumb>
			<ul>
				<li><a href="/">Home</a></li>
				<li></li>
				<li><span>Frozen</span></li>
			</ul>
		</cdx-breadcrumb>`)

	trail := ExtractBreadcrumbs(doc, WoolworthsContract())
	assert.Equal(t, []string{"Home", "Frozen"}, trail)
}
