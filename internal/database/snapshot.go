package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

// SnapshotStore keeps the latest extraction per product so runs can be
// compared over time. It is write-mostly: the pipeline only ever upserts.
type SnapshotStore struct {
	db *DB
}

func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// UpsertProduct stores the product keyed by (id, source_site), replacing any
// previous snapshot.
func (s *SnapshotStore) UpsertProduct(ctx context.Context, p *models.Product) error {
	categoryPath, err := json.Marshal(p.CategoryPath)
	if err != nil {
		return fmt.Errorf("failed to marshal category path: %w", err)
	}

	query := `
		INSERT INTO product_snapshots (
			id, source_site, name, size, image_url,
			current_price, unit_price, unit_name, category_path,
			last_checked, last_updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id, source_site) DO UPDATE SET
			name = EXCLUDED.name,
			size = EXCLUDED.size,
			image_url = EXCLUDED.image_url,
			current_price = EXCLUDED.current_price,
			unit_price = EXCLUDED.unit_price,
			unit_name = EXCLUDED.unit_name,
			category_path = EXCLUDED.category_path,
			last_checked = EXCLUDED.last_checked,
			last_updated = CASE
				WHEN product_snapshots.current_price IS DISTINCT FROM EXCLUDED.current_price
				THEN EXCLUDED.last_updated
				ELSE product_snapshots.last_updated
			END`

	_, err = s.db.Exec(ctx, query,
		p.ID, p.SourceSite, p.Name, p.Size, p.ImageURL,
		p.CurrentPrice, p.UnitPrice, nullableString(p.UnitName), categoryPath,
		p.LastChecked, p.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot for %s: %w", p.ID, err)
	}

	return nil
}

// GetProduct loads one snapshot, or nil when none exists.
func (s *SnapshotStore) GetProduct(ctx context.Context, id, sourceSite string) (*models.Product, error) {
	query := `
		SELECT id, source_site, name, size, image_url,
		       current_price, unit_price, unit_name, category_path,
		       last_checked, last_updated
		FROM product_snapshots
		WHERE id = $1 AND source_site = $2`

	var (
		p            models.Product
		unitName     *string
		categoryPath []byte
	)
	err := s.db.QueryRow(ctx, query, id, sourceSite).Scan(
		&p.ID, &p.SourceSite, &p.Name, &p.Size, &p.ImageURL,
		&p.CurrentPrice, &p.UnitPrice, &unitName, &categoryPath,
		&p.LastChecked, &p.LastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", id, err)
	}

	if unitName != nil {
		p.UnitName = *unitName
	}
	if len(categoryPath) > 0 {
		if err := json.Unmarshal(categoryPath, &p.CategoryPath); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category path: %w", err)
		}
	}

	return &p, nil
}

// CountProducts reports how many snapshots exist for a site.
func (s *SnapshotStore) CountProducts(ctx context.Context, sourceSite string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM product_snapshots WHERE source_site = $1`,
		sourceSite,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// StaleProducts lists snapshot IDs not seen since the cutoff, typically
// products that disappeared from the catalog.
func (s *SnapshotStore) StaleProducts(ctx context.Context, sourceSite string, cutoff time.Time) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id FROM product_snapshots WHERE source_site = $1 AND last_checked < $2 ORDER BY id`,
		sourceSite, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale snapshots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
