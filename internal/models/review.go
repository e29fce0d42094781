package models

import "github.com/google/uuid"

// Review is a customer comment on a purchased product. One review per
// user per product.
type Review struct {
	BaseModel
	ProductID   uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User        *User     `json:"-"`
	Comment     string    `json:"comment"`
	IsAnonymous bool      `json:"is_anonymous"`
}

// MaskName hides all but the first rune of a display name, the way
// anonymous reviews are rendered.
func MaskName(name string) string {
	runes := []rune(name)
	if len(runes) < 3 {
		masked := make([]rune, len(runes))
		for i := range masked {
			masked[i] = '*'
		}
		return string(masked)
	}
	out := make([]rune, len(runes))
	out[0] = runes[0]
	for i := 1; i < len(runes); i++ {
		out[i] = '*'
	}
	return string(out)
}

// DisplayName returns the reviewer's name, masked when anonymous.
func (r Review) DisplayName() string {
	if r.User == nil {
		return ""
	}
	if r.IsAnonymous {
		return MaskName(r.User.FullName)
	}
	return r.User.FullName
}
