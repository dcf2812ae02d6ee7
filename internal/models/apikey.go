package models

import "time"

// APIKey stores a user-supplied third-party credential used for tutor
// requests. At most one key per user is active at any time; activating one
// deactivates its siblings in the same transaction.
type APIKey struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	KeyName    string    `gorm:"size:128;not null" json:"key_name"`
	KeyValue   string    `gorm:"size:255;not null" json:"-"`
	IsActive   bool      `gorm:"not null;default:false" json:"is_active"`
	UsageCount int       `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
