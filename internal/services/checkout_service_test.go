package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/example/phoneshop/internal/models"
)

func cartItemWithID(id uuid.UUID, price int64) models.CartItem {
	item := models.CartItem{Price: price, Quantity: 1}
	item.ID = id
	return item
}

func TestFilterSelected(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	items := []models.CartItem{
		cartItemWithID(a, 100),
		cartItemWithID(b, 200),
		cartItemWithID(c, 300),
	}

	t.Run("empty selection keeps everything", func(t *testing.T) {
		got := FilterSelected(items, nil)
		if len(got) != 3 {
			t.Errorf("got %d items, want 3", len(got))
		}
	})

	t.Run("subset", func(t *testing.T) {
		got := FilterSelected(items, []string{a.String(), c.String()})
		if len(got) != 2 {
			t.Fatalf("got %d items, want 2", len(got))
		}
		if got[0].ID != a || got[1].ID != c {
			t.Errorf("unexpected items: %v", got)
		}
	})

	t.Run("unknown ids ignored", func(t *testing.T) {
		got := FilterSelected(items, []string{b.String(), uuid.NewString()})
		if len(got) != 1 || got[0].ID != b {
			t.Errorf("got %v, want only item b", got)
		}
	})

	t.Run("only unknown ids selects nothing", func(t *testing.T) {
		got := FilterSelected(items, []string{uuid.NewString()})
		if len(got) != 0 {
			t.Errorf("got %d items, want 0", len(got))
		}
	})
}

func TestOrderTotal(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		discount int64
		want     int64
	}{
		{"no discount", 1_000_000, 0, 1_000_000},
		{"partial discount", 1_000_000, 100_000, 900_000},
		{"discount equals subtotal", 500_000, 500_000, 0},
		{"discount exceeds subtotal", 500_000, 600_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrderTotal(tt.subtotal, tt.discount); got != tt.want {
				t.Errorf("OrderTotal(%d, %d) = %d, want %d", tt.subtotal, tt.discount, got, tt.want)
			}
		})
	}
}
