package models

import (
	"testing"
	"time"
)

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal int64
		want     int64
	}{
		{
			name:     "percent",
			coupon:   Coupon{DiscountType: DiscountTypePercent, DiscountValue: 10, IsActive: true},
			subtotal: 1_000_000,
			want:     100_000,
		},
		{
			name:     "percent rounds down",
			coupon:   Coupon{DiscountType: DiscountTypePercent, DiscountValue: 15, IsActive: true},
			subtotal: 999_999,
			want:     149_999,
		},
		{
			name:     "fixed",
			coupon:   Coupon{DiscountType: DiscountTypeFixed, DiscountValue: 50_000, IsActive: true},
			subtotal: 300_000,
			want:     50_000,
		},
		{
			name:     "fixed capped at subtotal",
			coupon:   Coupon{DiscountType: DiscountTypeFixed, DiscountValue: 100_000, IsActive: true},
			subtotal: 50_000,
			want:     50_000,
		},
		{
			name:     "below min order",
			coupon:   Coupon{DiscountType: DiscountTypePercent, DiscountValue: 10, MinOrder: 500_000, IsActive: true},
			subtotal: 400_000,
			want:     0,
		},
		{
			name:     "at min order",
			coupon:   Coupon{DiscountType: DiscountTypePercent, DiscountValue: 10, MinOrder: 500_000, IsActive: true},
			subtotal: 500_000,
			want:     50_000,
		},
		{
			name:     "inactive",
			coupon:   Coupon{DiscountType: DiscountTypePercent, DiscountValue: 10},
			subtotal: 1_000_000,
			want:     0,
		},
		{
			name:     "zero subtotal",
			coupon:   Coupon{DiscountType: DiscountTypeFixed, DiscountValue: 50_000, IsActive: true},
			subtotal: 0,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.coupon.CalculateDiscount(tt.subtotal)
			if got != tt.want {
				t.Errorf("CalculateDiscount(%d) = %d, want %d", tt.subtotal, got, tt.want)
			}
			if got < 0 || got > tt.subtotal {
				t.Errorf("discount %d out of range [0, %d]", got, tt.subtotal)
			}
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"never expires", nil, false},
		{"expired", &past, true},
		{"exactly now", &now, true},
		{"still valid", &future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Coupon{ExpiresAt: tt.expiresAt}
			if got := c.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}
