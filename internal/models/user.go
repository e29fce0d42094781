package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated customer.
type User struct {
	BaseModel
	Email           string            `gorm:"uniqueIndex" json:"email"`
	FullName        string            `json:"full_name"`
	PasswordHash    string            `json:"-"`
	PhoneNumber     string            `json:"phone_number"`
	IsPhoneVerified bool              `json:"is_phone_verified"`
	IsStaff         bool              `json:"is_staff"`
	Addresses       []ShippingAddress `json:"addresses,omitempty"`
	Vouchers        []UserVoucher     `json:"vouchers,omitempty"`
	Orders          []Order           `json:"orders,omitempty"`
}

// ShippingAddress is a delivery address owned by a user. At most one
// address per user carries is_default.
type ShippingAddress struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	IsDefault bool      `json:"is_default"`
}

// PasswordResetToken tracks a single forgot-password attempt.
type PasswordResetToken struct {
	BaseModel
	Email     string     `gorm:"index" json:"email"`
	Token     string     `gorm:"uniqueIndex" json:"-"`
	Code      string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}
