package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mfaulhaber/catalogd/internal/models"
)

// ListProductsOptions filters and pages the product listing.
type ListProductsOptions struct {
	Offset int
	Limit  int
	Search string
}

// ListProducts returns products ordered by SKU.
func (c *Client) ListProducts(ctx context.Context, opts ListProductsOptions) ([]models.Product, error) {
	q := url.Values{}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	path := "/api/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var products []models.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// CreateProductInput is the payload for creating a single product.
type CreateProductInput struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CreateProduct creates or updates a single product by SKU.
func (c *Client) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", input, &product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

// DeleteAllProducts removes every product.
func (c *Client) DeleteAllProducts(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/products/all", nil, nil); err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}
