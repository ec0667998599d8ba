package spree

import (
	"context"
	"fmt"
	"time"

	"github.com/fixturelab/platformseed/pkg/clients/pgdb"
)

// PGStore implements Store against a Spree PostgreSQL database.
type PGStore struct {
	db *pgdb.DB
}

// NewPGStore wraps an open connection pool.
func NewPGStore(db *pgdb.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) TaxonomyIDs(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT id, name FROM spree_taxonomies`)
	if err != nil {
		return nil, fmt.Errorf("list taxonomies: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

func (s *PGStore) InsertTaxonomy(ctx context.Context, name string, position int) (int, error) {
	now := time.Now()
	var id int
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO spree_taxonomies (name, created_at, updated_at, position, store_id)
		VALUES ($1, $2, $3, $4, 1)
		RETURNING id`,
		name, now, now, position).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert taxonomy %q: %w", name, err)
	}
	return id, nil
}

func (s *PGStore) InsertTaxon(ctx context.Context, row TaxonRow) (int, error) {
	now := time.Now()
	var id int
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO spree_taxons (parent_id, position, name, permalink, taxonomy_id,
		                          lft, rgt, description, created_at, updated_at,
		                          meta_title, depth, hide_from_nav)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, false)
		RETURNING id`,
		row.ParentID, row.Position, row.Name, row.Permalink, row.TaxonomyID,
		row.Lft, row.Rgt, row.Description, now, now,
		row.Name, row.Depth).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert taxon %q: %w", row.Name, err)
	}
	return id, nil
}

func (s *PGStore) RootTaxonID(ctx context.Context, taxonomyID int) (int, error) {
	var id int
	err := s.db.Pool.QueryRow(ctx,
		`SELECT id FROM spree_taxons WHERE taxonomy_id = $1 AND parent_id IS NULL`,
		taxonomyID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("root taxon of taxonomy %d: %w", taxonomyID, err)
	}
	return id, nil
}

func (s *PGStore) ExistingTaxonPermalinks(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT id, permalink FROM spree_taxons`)
	if err != nil {
		return nil, fmt.Errorf("list taxons: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int)
	for rows.Next() {
		var id int
		var permalink string
		if err := rows.Scan(&id, &permalink); err != nil {
			return nil, err
		}
		ids[permalink] = id
	}
	return ids, rows.Err()
}

func (s *PGStore) TaxonIDsByName(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, name FROM spree_taxons WHERE parent_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list child taxons: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

// RebuildNestedSet recomputes lft/rgt and positions for a two-level
// taxonomy tree: the root taxon and its direct children.
func (s *PGStore) RebuildNestedSet(ctx context.Context, taxonomyID int) error {
	rootID, err := s.RootTaxonID(ctx, taxonomyID)
	if err != nil {
		return err
	}

	rows, err := s.db.Pool.Query(ctx,
		`SELECT id FROM spree_taxons WHERE taxonomy_id = $1 AND parent_id = $2 ORDER BY id`,
		taxonomyID, rootID)
	if err != nil {
		return fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return err
		}
		children = append(children, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	lft := 2
	for position, id := range children {
		_, err := tx.Exec(ctx,
			`UPDATE spree_taxons SET lft = $1, rgt = $2, position = $3 WHERE id = $4`,
			lft, lft+1, position, id)
		if err != nil {
			return err
		}
		lft += 2
	}
	_, err = tx.Exec(ctx,
		`UPDATE spree_taxons SET lft = 1, rgt = $1 WHERE id = $2`,
		2*len(children)+2, rootID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGStore) ExistingProductSlugs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT slug FROM spree_products`)
	if err != nil {
		return nil, fmt.Errorf("list product slugs: %w", err)
	}
	defer rows.Close()

	slugs := make(map[string]bool)
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs[slug] = true
	}
	return slugs, rows.Err()
}

func (s *PGStore) DefaultShippingCategoryID(ctx context.Context) (int, error) {
	var id int
	err := s.db.Pool.QueryRow(ctx,
		`SELECT id FROM spree_shipping_categories ORDER BY id LIMIT 1`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("default shipping category: %w", err)
	}
	return id, nil
}

func (s *PGStore) DefaultStoreID(ctx context.Context) (int, error) {
	var id int
	err := s.db.Pool.QueryRow(ctx,
		`SELECT id FROM spree_stores ORDER BY created_at ASC LIMIT 1`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("default store: %w", err)
	}
	return id, nil
}

// InsertProduct writes the product, its store link, master variant, USD
// price, and taxon links in one transaction.
func (s *PGStore) InsertProduct(ctx context.Context, row ProductRow) error {
	now := time.Now()

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var productID int
	err = tx.QueryRow(ctx, `
		INSERT INTO spree_products (name, description, slug, created_at, updated_at,
		                            meta_title, meta_description, shipping_category_id,
		                            status, promotionable, available_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'active', true, $9)
		RETURNING id`,
		row.Name, row.Description, row.Slug, now, now,
		row.MetaTitle, row.MetaDescription, row.ShippingCategoryID,
		row.AvailableOn).Scan(&productID)
	if err != nil {
		return fmt.Errorf("insert product %q: %w", row.Name, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO spree_products_stores (product_id, store_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`,
		productID, row.StoreID, now, now)
	if err != nil {
		return fmt.Errorf("link product to store: %w", err)
	}

	var variantID int
	err = tx.QueryRow(ctx, `
		INSERT INTO spree_variants (product_id, sku, created_at, updated_at,
		                            is_master, track_inventory, position)
		VALUES ($1, $2, $3, $4, true, true, 1)
		RETURNING id`,
		productID, row.SKU, now, now).Scan(&variantID)
	if err != nil {
		return fmt.Errorf("insert master variant: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO spree_prices (variant_id, amount, currency, created_at, updated_at)
		VALUES ($1, $2, 'USD', $3, $4)`,
		variantID, row.Price, now, now)
	if err != nil {
		return fmt.Errorf("insert price: %w", err)
	}

	for position, taxonID := range row.TaxonIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO spree_products_taxons (product_id, taxon_id, position, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)`,
			productID, taxonID, position+1, now, now)
		if err != nil {
			return fmt.Errorf("link product to taxon %d: %w", taxonID, err)
		}
	}

	return tx.Commit(ctx)
}
