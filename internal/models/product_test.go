package models

import "testing"

func TestDisplayName(t *testing.T) {
	p := Product{Brand: "Apple", Name: "iPhone 15 Pro"}
	if got := p.DisplayName(); got != "Apple iPhone 15 Pro" {
		t.Errorf("DisplayName() = %q", got)
	}
}

func TestDisplayDiscountPercent(t *testing.T) {
	tests := []struct {
		name     string
		original int64
		sale     int64
		want     int
	}{
		{"ten percent off", 1_000_000, 900_000, 10},
		{"no discount", 1_000_000, 1_000_000, 0},
		{"sale above original", 1_000_000, 1_100_000, 0},
		{"zero original", 0, 0, 0},
		{"rounds down", 29_990_000, 27_990_000, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{OriginalPrice: tt.original, SalePrice: tt.sale}
			if got := p.DisplayDiscountPercent(); got != tt.want {
				t.Errorf("DisplayDiscountPercent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStorageOptionSalePrice(t *testing.T) {
	tests := []struct {
		name     string
		original int64
		discount float64
		want     int64
	}{
		{"no discount", 25_000_000, 0, 25_000_000},
		{"ten percent", 25_000_000, 10, 22_500_000},
		{"rounds to nearest thousand", 19_990_000, 7, 18_591_000},
		{"exact thousand", 10_000_000, 15, 8_500_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := StorageOption{OriginalPrice: tt.original}
			if got := o.SalePrice(tt.discount); got != tt.want {
				t.Errorf("SalePrice(%v) = %d, want %d", tt.discount, got, tt.want)
			}
			if got := o.SalePrice(tt.discount); got%1000 != 0 {
				t.Errorf("SalePrice(%v) = %d, not a multiple of 1000", tt.discount, got)
			}
		})
	}
}

func TestPromotionalPrice(t *testing.T) {
	p := Product{OriginalPrice: 20_000_000, DiscountPercent: 25}
	if got := p.PromotionalPrice(); got != 15_000_000 {
		t.Errorf("PromotionalPrice() = %d, want 15000000", got)
	}
}
