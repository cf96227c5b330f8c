package ingest

import (
	"testing"
)

func TestNormalizeCanonicalizesFields(t *testing.T) {
	tests := []struct {
		name     string
		row      map[string]string
		wantSKU  string
		wantName string
		wantDesc string // "" means absent
		wantFlag bool
		skip     bool
	}{
		{
			name:     "lowercases and trims sku",
			row:      map[string]string{"sku": "  ABC-1 ", "name": " Widget "},
			wantSKU:  "abc-1",
			wantName: "Widget",
			wantFlag: true,
		},
		{
			name: "empty sku after trim skips",
			row:  map[string]string{"sku": "   ", "name": "Widget"},
			skip: true,
		},
		{
			name: "empty name after trim skips",
			row:  map[string]string{"sku": "abc-1", "name": " "},
			skip: true,
		},
		{
			name: "missing columns skip",
			row:  map[string]string{"description": "orphan"},
			skip: true,
		},
		{
			name:     "empty description is absent",
			row:      map[string]string{"sku": "a", "name": "A", "description": "  "},
			wantSKU:  "a",
			wantName: "A",
			wantFlag: true,
		},
		{
			name:     "description trimmed",
			row:      map[string]string{"sku": "a", "name": "A", "description": " some text "},
			wantSKU:  "a",
			wantName: "A",
			wantDesc: "some text",
			wantFlag: true,
		},
		{
			name:     "is_active false token",
			row:      map[string]string{"sku": "a", "name": "A", "is_active": "FALSE"},
			wantSKU:  "a",
			wantName: "A",
			wantFlag: false,
		},
		{
			name:     "is_active zero",
			row:      map[string]string{"sku": "a", "name": "A", "is_active": "0"},
			wantSKU:  "a",
			wantName: "A",
			wantFlag: false,
		},
		{
			name:     "is_active no",
			row:      map[string]string{"sku": "a", "name": "A", "is_active": " No "},
			wantSKU:  "a",
			wantName: "A",
			wantFlag: false,
		},
		{
			name:     "is_active garbage defaults true",
			row:      map[string]string{"sku": "a", "name": "A", "is_active": "banana"},
			wantSKU:  "a",
			wantName: "A",
			wantFlag: true,
		},
		{
			name:     "is_active empty defaults true",
			row:      map[string]string{"sku": "a", "name": "A", "is_active": ""},
			wantSKU:  "a",
			wantName: "A",
			wantFlag: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, ok := Normalize(tt.row)
			if tt.skip {
				if ok {
					t.Fatalf("Normalize() = %+v, want skip", product)
				}
				return
			}
			if !ok {
				t.Fatal("Normalize() skipped, want product")
			}
			if product.SKU != tt.wantSKU {
				t.Errorf("SKU = %q, want %q", product.SKU, tt.wantSKU)
			}
			if product.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", product.Name, tt.wantName)
			}
			if tt.wantDesc == "" {
				if product.Description != nil {
					t.Errorf("Description = %q, want absent", *product.Description)
				}
			} else if product.Description == nil || *product.Description != tt.wantDesc {
				t.Errorf("Description = %v, want %q", product.Description, tt.wantDesc)
			}
			if product.IsActive != tt.wantFlag {
				t.Errorf("IsActive = %v, want %v", product.IsActive, tt.wantFlag)
			}
		})
	}
}
