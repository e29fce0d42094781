package services

import (
	"errors"
	"testing"
	"time"

	"github.com/example/phoneshop/internal/models"
)

func activeCoupon() *models.Coupon {
	return &models.Coupon{
		Code:          "SALE10",
		DiscountType:  models.DiscountTypePercent,
		DiscountValue: 10,
		UsageType:     models.UsageTypeAll,
		IsActive:      true,
	}
}

func TestCheckCouponEligibility(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)

	tests := []struct {
		name     string
		mutate   func(*models.Coupon)
		email    string
		used     bool
		selected int
		wantErr  error
	}{
		{
			name:     "valid",
			mutate:   func(c *models.Coupon) {},
			email:    "a@x.com",
			selected: 2,
			wantErr:  nil,
		},
		{
			name:     "inactive",
			mutate:   func(c *models.Coupon) { c.IsActive = false },
			email:    "a@x.com",
			selected: 2,
			wantErr:  ErrCouponNotFound,
		},
		{
			name:     "expired",
			mutate:   func(c *models.Coupon) { c.ExpiresAt = &expired },
			email:    "a@x.com",
			selected: 2,
			wantErr:  ErrCouponExpired,
		},
		{
			name: "email mismatch",
			mutate: func(c *models.Coupon) {
				c.UsageType = models.UsageTypeSpecific
				c.SpecificEmail = "b@x.com"
			},
			email:    "a@x.com",
			selected: 2,
			wantErr:  ErrEmailMismatch,
		},
		{
			name: "email match is case insensitive",
			mutate: func(c *models.Coupon) {
				c.UsageType = models.UsageTypeSpecific
				c.SpecificEmail = "A@X.com "
			},
			email:    "a@x.com",
			selected: 2,
			wantErr:  nil,
		},
		{
			name:     "already used",
			mutate:   func(c *models.Coupon) {},
			email:    "a@x.com",
			used:     true,
			selected: 2,
			wantErr:  ErrVoucherUsed,
		},
		{
			name:     "empty selection",
			mutate:   func(c *models.Coupon) {},
			email:    "a@x.com",
			selected: 0,
			wantErr:  ErrNoSelection,
		},
		{
			name: "expiry beats email mismatch",
			mutate: func(c *models.Coupon) {
				c.ExpiresAt = &expired
				c.UsageType = models.UsageTypeSpecific
				c.SpecificEmail = "b@x.com"
			},
			email:    "a@x.com",
			selected: 2,
			wantErr:  ErrCouponExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := activeCoupon()
			tt.mutate(coupon)

			err := CheckCouponEligibility(coupon, tt.email, tt.used, tt.selected, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckCouponEligibility() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckCouponEligibilityNilCoupon(t *testing.T) {
	err := CheckCouponEligibility(nil, "a@x.com", false, 1, time.Now())
	if !errors.Is(err, ErrCouponNotFound) {
		t.Errorf("CheckCouponEligibility(nil) = %v, want ErrCouponNotFound", err)
	}
}

func TestConsumeTransition(t *testing.T) {
	t.Run("unused voucher is marked used", func(t *testing.T) {
		action, err := consumeTransition(&models.UserVoucher{})
		if err != nil {
			t.Fatalf("consumeTransition: %v", err)
		}
		if action != consumeMarkUsed {
			t.Errorf("action = %v, want consumeMarkUsed", action)
		}
	})

	t.Run("missing row falls back to a legacy record", func(t *testing.T) {
		action, err := consumeTransition(nil)
		if err != nil {
			t.Fatalf("consumeTransition: %v", err)
		}
		if action != consumeRecordLegacy {
			t.Errorf("action = %v, want consumeRecordLegacy", action)
		}
	})

	t.Run("used voucher is rejected, never silently skipped", func(t *testing.T) {
		// A concurrent checkout can flip the row between the guard
		// check and acquiring its lock; the transition must reject it.
		_, err := consumeTransition(&models.UserVoucher{IsUsed: true})
		if !errors.Is(err, ErrVoucherUsed) {
			t.Errorf("consumeTransition(used) = %v, want ErrVoucherUsed", err)
		}
	})

	t.Run("consumed stays consumed", func(t *testing.T) {
		voucher := &models.UserVoucher{}
		if _, err := consumeTransition(voucher); err != nil {
			t.Fatalf("first transition: %v", err)
		}
		voucher.IsUsed = true
		if _, err := consumeTransition(voucher); !errors.Is(err, ErrVoucherUsed) {
			t.Errorf("second transition = %v, want ErrVoucherUsed", err)
		}
	})
}

func TestCheckCouponEligibilityProductLimit(t *testing.T) {
	now := time.Now()

	coupon := activeCoupon()
	coupon.MaxProductLimit = 2

	if err := CheckCouponEligibility(coupon, "a@x.com", false, 2, now); err != nil {
		t.Errorf("selection within limit: %v", err)
	}

	err := CheckCouponEligibility(coupon, "a@x.com", false, 3, now)
	var limitErr *ProductLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("CheckCouponEligibility() = %v, want ProductLimitError", err)
	}
	if limitErr.Limit != 2 || limitErr.Selected != 3 {
		t.Errorf("ProductLimitError = %+v, want Limit=2 Selected=3", limitErr)
	}
}
