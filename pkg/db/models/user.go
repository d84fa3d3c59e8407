package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity. The cart and checkout
// pipeline treats it as read-only; the account subsystem owns mutation.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FirstName    string    `gorm:"column:first_name;not null"`
	LastName     string    `gorm:"column:last_name;not null"`
	Phone        *string   `gorm:"column:phone"`
	IsVerified   bool      `gorm:"column:is_verified;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins first and last name for customer-facing records.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
