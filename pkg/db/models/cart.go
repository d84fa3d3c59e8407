package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a user's in-progress purchases. At most one exists per user,
// enforced by the unique index on user_id.
type Cart struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []CartLineItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
