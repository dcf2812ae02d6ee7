package models

import "time"

// User represents a registered account. Registrations start unconfirmed and
// are swept by a background job when the confirmation window expires.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name             string    `gorm:"size:128" json:"name"`
	PasswordHash     string    `gorm:"size:255;not null" json:"-"`
	EmailConfirmed   bool      `gorm:"not null;default:false" json:"email_confirmed"`
	TwoFactorEnabled bool      `gorm:"not null;default:false" json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
