package models

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is a customer message to the shop with an optional admin
// response.
type Feedback struct {
	BaseModel
	UserID        uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User          *User      `json:"user,omitempty"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	AdminResponse string     `json:"admin_response"`
	RespondedAt   *time.Time `json:"responded_at"`
}

// IsResponded reports whether an admin has answered.
func (f Feedback) IsResponded() bool {
	return f.AdminResponse != ""
}
