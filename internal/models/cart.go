package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Cart belongs to a logged-in user or, for guests, to a client-supplied
// session key. Exactly one of the two owner fields is set.
type Cart struct {
	BaseModel
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SessionKey string     `gorm:"index" json:"session_key,omitempty"`
	Items      []CartItem `json:"items,omitempty"`
}

// CartSubtotal sums the line totals of the given items.
func CartSubtotal(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// CartItem is one product+storage+color line in a cart. The price is
// frozen at add time.
type CartItem struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;index" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Storage   string    `json:"storage"`
	Color     string    `json:"color"`
	Quantity  int       `gorm:"default:1" json:"quantity"`
	Price     int64     `json:"price"`
}

// Subtotal is the line total for this item.
func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// CheckoutSession is the per-checkout-attempt state: which cart items
// the customer selected and which coupon code they applied. It replaces
// transient session storage so that clearing it can join the order
// placement transaction.
type CheckoutSession struct {
	BaseModel
	CartID          uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"cart_id"`
	AppliedCoupon   string         `json:"applied_coupon"`
	SelectedItemIDs pq.StringArray `gorm:"type:text[]" json:"selected_item_ids"`
}
