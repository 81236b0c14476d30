package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

var (
	nonDigits  = regexp.MustCompile(`\D`)
	whitespace = regexp.MustCompile(`\s+`)

	// Size tokens: weight/volume ("400g", "1.5kg", "2-3kg"), packs ("6 pack")
	// and trays ("tray 12").
	sizePattern = regexp.MustCompile(`(tray\s\d+)|(\d+(\.\d+)?(-\d+(\.\d+)?)?\s?(g|kg|l|ml|pack))\b`)

	// Per-unit price as rendered on the listing tile, e.g. "$2.50 / 100g".
	unitPricePattern = regexp.MustCompile(`^\$([\d.]+) / (\d+)(g|kg|ml|l)\b`)
)

// Extractor turns one listing node into a canonical product record.
type Extractor struct {
	contract   PageContract
	sourceSite string
	now        func() time.Time
}

func NewExtractor(contract PageContract, sourceSite string) *Extractor {
	return &Extractor{
		contract:   contract,
		sourceSite: sourceSite,
		now:        time.Now,
	}
}

// Extract parses a single listing node. The boolean reports whether a usable
// record was produced; a miss drops only this entry, never the page.
func (e *Extractor) Extract(entry *goquery.Selection) (*models.Product, bool) {
	title := entry.Find(e.contract.Title).First()
	if title.Length() == 0 {
		return nil, false
	}

	rawID, _ := title.Attr("id")
	id := nonDigits.ReplaceAllString(rawID, "")
	if id == "" {
		return nil, false
	}

	product := models.NewProduct(id, e.sourceSite, e.now())
	product.Name, product.Size = SplitNameSize(title.Text())

	if img := entry.Find(e.contract.Image).First(); img.Length() > 0 {
		product.ImageURL, _ = img.Attr("src")
	}

	price, ok := e.extractPrice(entry)
	if !ok {
		return nil, false
	}
	product.CurrentPrice = &price

	if unitPrice, unitName, ok := e.extractUnitPrice(entry); ok {
		product.UnitPrice = &unitPrice
		product.UnitName = unitName
	}

	return product, true
}

// DetailURL returns the product detail-page href of a listing node, when the
// node exposes one.
func (e *Extractor) DetailURL(entry *goquery.Selection) (string, bool) {
	link := entry.Find(e.contract.DetailLink).First()
	if link.Length() == 0 {
		return "", false
	}
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return "", false
	}
	return href, true
}

// extractPrice reads the whole-currency and cents sub-elements. Both must be
// present for the entry to be usable; cents that filter to no digits default
// to "00".
func (e *Extractor) extractPrice(entry *goquery.Selection) (float64, bool) {
	priceEl := entry.Find(e.contract.Price).First()
	if priceEl.Length() == 0 {
		return 0, false
	}

	whole := priceEl.Find(e.contract.PriceWhole).First()
	cents := priceEl.Find(e.contract.PriceCents).First()
	if whole.Length() == 0 || cents.Length() == 0 {
		return 0, false
	}

	wholeText := nonDigits.ReplaceAllString(whole.Text(), "")
	centsText := nonDigits.ReplaceAllString(cents.Text(), "")
	if wholeText == "" {
		return 0, false
	}
	if centsText == "" {
		centsText = "00"
	}

	price, err := strconv.ParseFloat(wholeText+"."+centsText, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

func (e *Extractor) extractUnitPrice(entry *goquery.Selection) (float64, string, bool) {
	el := entry.Find(e.contract.UnitPrice).First()
	if el.Length() == 0 {
		return 0, "", false
	}

	match := unitPricePattern.FindStringSubmatch(strings.TrimSpace(el.Text()))
	if match == nil {
		return 0, "", false
	}

	amount, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, "", false
	}

	unitPrice, unitName := NormalizeUnitPrice(amount, match[3])
	return unitPrice, unitName, true
}

// SplitNameSize lower-cases and whitespace-collapses a raw title, then splits
// it around the first size token. Without a size token the whole text becomes
// the name and the size is empty.
func SplitNameSize(raw string) (name, size string) {
	text := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")

	loc := sizePattern.FindStringIndex(text)
	if loc == nil {
		return titleCase(text), ""
	}

	name = titleCase(strings.TrimSpace(text[:loc[0]]))
	size = text[loc[0]:loc[1]]
	size = strings.ReplaceAll(size, "l", "L")
	size = strings.ReplaceAll(size, "tray", "Tray")
	return name, size
}

// NormalizeUnitPrice folds the scraped unit into per-kilogram or per-litre:
// gram and millilitre prices scale by 1000, kilogram and litre pass through.
func NormalizeUnitPrice(amount float64, unit string) (float64, string) {
	switch unit {
	case "g":
		return amount * 1000, "kg"
	case "ml":
		return amount * 1000, "L"
	case "l":
		return amount, "L"
	default:
		return amount, unit
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
