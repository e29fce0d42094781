package handlers

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/services"
)

func fiberStatus(t *testing.T, err error) int {
	t.Helper()
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fiber.Error, got %T: %v", err, err)
	}
	return fe.Code
}

func TestVoucherError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want int
	}{
		{"not found", services.ErrCouponNotFound, fiber.StatusNotFound},
		{"expired", services.ErrCouponExpired, fiber.StatusBadRequest},
		{"email mismatch", services.ErrEmailMismatch, fiber.StatusForbidden},
		{"already used", services.ErrVoucherUsed, fiber.StatusBadRequest},
		{"no selection", services.ErrNoSelection, fiber.StatusBadRequest},
		{"product limit", &services.ProductLimitError{Limit: 2, Selected: 5}, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fiberStatus(t, voucherError(tt.in)); got != tt.want {
				t.Errorf("voucherError(%v) status = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestVoucherErrorPassthrough(t *testing.T) {
	unknown := errors.New("database is on fire")
	if got := voucherError(unknown); got != unknown {
		t.Errorf("voucherError passed through %v, want original error", got)
	}
}

func TestPreviewSelection(t *testing.T) {
	newItem := func(id uuid.UUID) models.CartItem {
		item := models.CartItem{Quantity: 1}
		item.ID = id
		return item
	}

	a, b := uuid.New(), uuid.New()
	items := []models.CartItem{newItem(a), newItem(b)}
	stored := []string{a.String(), b.String()}

	t.Run("posted ids win over the stored selection", func(t *testing.T) {
		got := previewSelection(items, []string{b.String()}, stored)
		if len(got) != 1 || got[0].ID != b {
			t.Errorf("got %v, want only item b", got)
		}
	})

	t.Run("no posted ids falls back to the stored selection", func(t *testing.T) {
		got := previewSelection(items, nil, []string{a.String()})
		if len(got) != 1 || got[0].ID != a {
			t.Errorf("got %v, want only item a", got)
		}
	})

	t.Run("posted unknown ids select nothing", func(t *testing.T) {
		// Feeds the empty-selection guard before any session write.
		got := previewSelection(items, []string{uuid.NewString()}, stored)
		if len(got) != 0 {
			t.Errorf("got %d items, want 0", len(got))
		}
	})
}

func TestCheckoutError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want int
	}{
		{"empty cart", services.ErrCartEmpty, fiber.StatusBadRequest},
		{"nothing selected", services.ErrNothingToCheckout, fiber.StatusBadRequest},
		{"missing shipping info", services.ErrMissingShippingInfo, fiber.StatusBadRequest},
		{"no cart identity", services.ErrNoCartIdentity, fiber.StatusBadRequest},
		{"voucher guard", services.ErrVoucherUsed, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fiberStatus(t, checkoutError(tt.in)); got != tt.want {
				t.Errorf("checkoutError(%v) status = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
