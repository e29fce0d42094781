package models

import "github.com/google/uuid"

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusApproved   = "approved"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Payment methods.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// Order is an immutable purchase record. Only status and payment_status
// change after creation.
type Order struct {
	BaseModel
	UserID         uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User           *User       `json:"user,omitempty"`
	OrderNumber    string      `gorm:"uniqueIndex" json:"order_number"`
	FullName       string      `json:"full_name"`
	Phone          string      `json:"phone"`
	Address        string      `json:"address"`
	Status         string      `gorm:"default:pending" json:"status"`
	PaymentMethod  string      `gorm:"default:cod" json:"payment_method"`
	PaymentStatus  string      `gorm:"default:unpaid" json:"payment_status"`
	Subtotal       int64       `json:"subtotal"`
	DiscountAmount int64       `json:"discount_amount"`
	CouponCode     string      `gorm:"index" json:"coupon_code"`
	Total          int64       `json:"total"`
	Note           string      `json:"note"`
	Items          []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots one cart line at placement time so later catalog
// edits do not alter order history.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Product     *Product   `json:"product,omitempty"`
	ProductName string     `json:"product_name"`
	Storage     string     `json:"storage"`
	Color       string     `json:"color"`
	Quantity    int        `json:"quantity"`
	Price       int64      `json:"price"`
	IsReviewed  bool       `json:"is_reviewed"`
}

// Subtotal is the line total for this item.
func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}
