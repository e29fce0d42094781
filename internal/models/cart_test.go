package models

import "testing"

func TestCartItemSubtotal(t *testing.T) {
	item := CartItem{Price: 22_500_000, Quantity: 2}
	if got := item.Subtotal(); got != 45_000_000 {
		t.Errorf("Subtotal() = %d, want 45000000", got)
	}
}

func TestCartSubtotal(t *testing.T) {
	items := []CartItem{
		{Price: 1_000_000, Quantity: 1},
		{Price: 500_000, Quantity: 3},
	}
	if got := CartSubtotal(items); got != 2_500_000 {
		t.Errorf("CartSubtotal() = %d, want 2500000", got)
	}

	if got := CartSubtotal(nil); got != 0 {
		t.Errorf("CartSubtotal(nil) = %d, want 0", got)
	}
}
