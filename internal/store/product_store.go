package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/mfaulhaber/catalogd/internal/models"
)

// ProductStore persists catalog products keyed by sku.
type ProductStore struct {
	db *bun.DB
}

// NewProductStore creates a product store over db.
func NewProductStore(db *bun.DB) *ProductStore {
	return &ProductStore{db: db}
}

// UpsertBatch applies one batch of products atomically: insert each, or
// overwrite name, description and is_active when the sku already exists.
// Entries sharing a sku are deduplicated first, last occurrence winning,
// because a single multi-row upsert cannot apply two conflicting updates
// to the same key. Either the whole batch lands or none of it does;
// batches committed earlier in a job are never rolled back.
func (s *ProductStore) UpsertBatch(ctx context.Context, products []models.Product) error {
	deduped := dedupeBySKU(products)
	if len(deduped) == 0 {
		return nil
	}

	_, err := s.db.NewInsert().
		Model(&deduped).
		On("CONFLICT (sku) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("is_active = EXCLUDED.is_active").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert batch of %d products: %w", len(deduped), err)
	}
	return nil
}

// Upsert applies a single product with the same conflict semantics.
func (s *ProductStore) Upsert(ctx context.Context, product models.Product) error {
	return s.UpsertBatch(ctx, []models.Product{product})
}

// Get returns the product with the given sku, or nil when absent.
func (s *ProductStore) Get(ctx context.Context, sku string) (*models.Product, error) {
	product := new(models.Product)
	err := s.db.NewSelect().
		Model(product).
		Where("sku = ?", sku).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %q: %w", sku, err)
	}
	return product, nil
}

// List returns products ordered by sku with optional case-insensitive
// substring search over sku and name.
func (s *ProductStore) List(ctx context.Context, offset, limit int, search string) ([]models.Product, error) {
	if limit <= 0 {
		limit = 50
	}

	var products []models.Product
	q := s.db.NewSelect().
		Model(&products).
		Order("sku ASC").
		Offset(offset).
		Limit(limit)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("(lower(sku) LIKE ? OR lower(name) LIKE ?)", pattern, pattern)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// Count returns the total number of stored products.
func (s *ProductStore) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*models.Product)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// DeleteAll removes every product.
func (s *ProductStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.NewDelete().Model((*models.Product)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return fmt.Errorf("delete all products: %w", err)
	}
	return nil
}

// dedupeBySKU keeps the last occurrence per sku, preserving the relative
// order of the surviving entries.
func dedupeBySKU(products []models.Product) []models.Product {
	if len(products) <= 1 {
		return products
	}

	seen := make(map[string]struct{}, len(products))
	out := make([]models.Product, 0, len(products))
	for i := len(products) - 1; i >= 0; i-- {
		p := products[i]
		if _, dup := seen[p.SKU]; dup {
			continue
		}
		seen[p.SKU] = struct{}{}
		out = append(out, p)
	}

	// Restore input order of the survivors.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
