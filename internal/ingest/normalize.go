package ingest

import (
	"strings"

	"github.com/mfaulhaber/catalogd/internal/models"
)

// Normalize canonicalizes a raw CSV row into a Product. The second
// return value is false when the row should be skipped (empty sku or
// name after trimming). Normalization never fails: malformed scalars
// degrade to the most permissive interpretation instead.
func Normalize(row map[string]string) (models.Product, bool) {
	sku := strings.ToLower(strings.TrimSpace(row[ColumnSKU]))
	if sku == "" {
		return models.Product{}, false
	}

	name := strings.TrimSpace(row[ColumnName])
	if name == "" {
		return models.Product{}, false
	}

	var description *string
	if d := strings.TrimSpace(row["description"]); d != "" {
		description = &d
	}

	return models.Product{
		SKU:         sku,
		Name:        name,
		Description: description,
		IsActive:    parseBool(row["is_active"]),
	}, true
}

// parseBool treats "false", "0" and "no" (case-insensitive) as false;
// everything else, including missing and empty, as true.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "false", "0", "no":
		return false
	}
	return true
}
