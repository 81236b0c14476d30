package frappe

import (
	"time"

	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

// Record is the wire shape of a product document in the catalog of record.
// Field names follow its snake_case document schema, not ours.
type Record struct {
	ProductID            string        `json:"product_id"`
	ProductName          string        `json:"productname"`
	SourceSite           string        `json:"source_site"`
	Size                 string        `json:"size,omitempty"`
	ImageURL             string        `json:"image_url,omitempty"`
	CurrentPrice         float64       `json:"current_price"`
	UnitPrice            *float64      `json:"unit_price,omitempty"`
	UnitName             string        `json:"unit_name,omitempty"`
	OriginalUnitQuantity int           `json:"original_unit_quantity"`
	PriceHistory         []PricePoint  `json:"price_history"`
	LastUpdated          string        `json:"last_updated"`
	LastChecked          string        `json:"last_checked"`
	Category             string        `json:"category"`
	ProductCategories    []CategoryRef `json:"product_categories"`
}

type PricePoint struct {
	Price float64 `json:"price"`
	Date  string  `json:"date"`
}

type CategoryRef struct {
	CategoryName string `json:"category_name"`
}

// NewRecord maps a catalog product onto the remote document shape. The
// singular category slot is the third breadcrumb level, which on the source
// site is the first level below "Home" and the department.
func NewRecord(p *models.Product) Record {
	r := Record{
		ProductID:            p.ID,
		ProductName:          p.Name,
		SourceSite:           p.SourceSite,
		Size:                 p.Size,
		ImageURL:             p.ImageURL,
		UnitPrice:            p.UnitPrice,
		UnitName:             p.UnitName,
		OriginalUnitQuantity: 1,
		LastUpdated:          p.LastUpdated.Format(time.RFC3339),
		LastChecked:          p.LastChecked.Format(time.RFC3339),
	}

	if p.CurrentPrice != nil {
		r.CurrentPrice = *p.CurrentPrice
		r.PriceHistory = []PricePoint{{Price: *p.CurrentPrice, Date: r.LastChecked}}
	}

	if len(p.CategoryPath) > 2 {
		r.Category = p.CategoryPath[2]
	}

	r.ProductCategories = make([]CategoryRef, 0, len(p.CategoryPath))
	for _, name := range p.CategoryPath {
		r.ProductCategories = append(r.ProductCategories, CategoryRef{CategoryName: name})
	}

	return r
}
