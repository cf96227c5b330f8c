// Package models defines the persisted domain types for catalogd.
package models

import (
	"github.com/uptrace/bun"
)

// Product is the canonical catalog record. SKU is the natural key:
// lower-cased, trimmed, globally unique. Re-ingesting an existing SKU
// overwrites the display fields only.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p" json:"-"`

	SKU         string  `bun:"sku,pk" json:"sku"`
	Name        string  `bun:"name,notnull" json:"name"`
	Description *string `bun:"description" json:"description,omitempty"`
	IsActive    bool    `bun:"is_active,notnull" json:"is_active"`
}
