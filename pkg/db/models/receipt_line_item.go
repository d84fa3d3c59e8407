package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLineItem freezes a cart line item at the moment of purchase.
// Name/price/image are copied from the product, not referenced, so the
// receipt stays accurate if the catalog changes later. ProductID is kept
// only as an analytics back-reference.
type ReceiptLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ReceiptID uuid.UUID       `gorm:"column:receipt_id;type:uuid;not null"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Image     string          `gorm:"column:image;type:text"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
