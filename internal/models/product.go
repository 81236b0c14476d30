package models

import (
	"time"
)

// Category is one entry of the catalog's browse tree, discovered once per run.
type Category struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Product is the canonical catalog record produced by extracting one listing node.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         string    `json:"size"`
	SourceSite   string    `json:"sourceSite"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	CurrentPrice *float64  `json:"currentPrice,omitempty"`
	UnitPrice    *float64  `json:"unitPrice,omitempty"`
	UnitName     string    `json:"unitName,omitempty"`
	CategoryPath []string  `json:"categoryPath,omitempty"`
	LastChecked  time.Time `json:"lastChecked"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

func NewProduct(id, sourceSite string, now time.Time) *Product {
	return &Product{
		ID:          id,
		SourceSite:  sourceSite,
		LastChecked: now,
		LastUpdated: now,
	}
}

func (p *Product) Validate() []string {
	var errors []string

	if p.ID == "" {
		errors = append(errors, "ID is required")
	}

	if p.Name == "" {
		errors = append(errors, "Name is required")
	}

	if p.SourceSite == "" {
		errors = append(errors, "SourceSite is required")
	}

	if p.CurrentPrice == nil {
		errors = append(errors, "CurrentPrice is required")
	} else if *p.CurrentPrice < 0 {
		errors = append(errors, "CurrentPrice must not be negative")
	}

	// Unit price and unit name travel together.
	if (p.UnitPrice == nil) != (p.UnitName == "") {
		errors = append(errors, "UnitPrice and UnitName must be set together")
	}

	if p.UnitName != "" && p.UnitName != "kg" && p.UnitName != "L" {
		errors = append(errors, "UnitName must be kg or L")
	}

	return errors
}
