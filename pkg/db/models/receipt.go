package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt records one completed, gateway-verified purchase. At most one
// exists per order id (unique index); it is written once and never mutated.
type Receipt struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       string            `gorm:"column:order_id;type:text;not null;uniqueIndex"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	CustomerName  string            `gorm:"column:customer_name;not null"`
	CustomerEmail string            `gorm:"column:customer_email;not null"`
	CustomerPhone *string           `gorm:"column:customer_phone"`
	Amount        decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null"`
	TransactionID string            `gorm:"column:transaction_id;type:text;not null"`
	Status        string            `gorm:"column:status;type:text;not null"`
	Items         []ReceiptLineItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
