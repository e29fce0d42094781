package models

import (
	"time"

	"github.com/google/uuid"
)

// Discount types supported by Coupon.
const (
	DiscountTypePercent = "percent"
	DiscountTypeFixed   = "fixed"
)

// Usage types: who may apply the coupon.
const (
	UsageTypeAll      = "all"
	UsageTypeSpecific = "specific"
)

// Coupon is a reusable, admin-defined discount rule referenced by a code.
type Coupon struct {
	BaseModel
	Code            string     `gorm:"uniqueIndex" json:"code"`
	Description     string     `json:"description"`
	DiscountType    string     `gorm:"default:percent" json:"discount_type"`
	DiscountValue   int64      `json:"discount_value"`
	MinOrder        int64      `json:"min_order"`
	MaxUsage        int        `json:"max_usage"`
	MaxUsagePerUser int        `gorm:"default:1" json:"max_usage_per_user"`
	UsageType       string     `gorm:"default:all" json:"usage_type"`
	SpecificEmail   string     `json:"specific_email"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at"`
	MaxProductLimit int        `json:"max_product_limit"`
	UsedCount       int        `json:"used_count"`
}

// CalculateDiscount returns the discount amount for the given order
// subtotal. The result is always in [0, subtotal].
func (c Coupon) CalculateDiscount(subtotal int64) int64 {
	if !c.IsActive {
		return 0
	}

	if c.MinOrder > 0 && subtotal < c.MinOrder {
		return 0
	}

	if c.DiscountType == DiscountTypePercent {
		return subtotal * c.DiscountValue / 100
	}

	// Fixed discount never exceeds the subtotal.
	if c.DiscountValue > subtotal {
		return subtotal
	}
	return c.DiscountValue
}

// IsExpired reports whether the coupon has passed its expiry. A nil
// ExpiresAt means the coupon never expires.
func (c Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// UserVoucher binds one coupon instance to one user. is_used only ever
// moves false to true, at order placement.
type UserVoucher struct {
	BaseModel
	UserID   uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	CouponID uuid.UUID  `gorm:"type:uuid;index" json:"coupon_id"`
	Coupon   *Coupon    `json:"coupon,omitempty"`
	IsUsed   bool       `json:"is_used"`
	UsedAt   *time.Time `json:"used_at"`
	OrderID  *uuid.UUID `gorm:"type:uuid" json:"order_id"`
}
