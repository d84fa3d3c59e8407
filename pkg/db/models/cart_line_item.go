package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLineItem is one product entry in a cart, addressed by the composite
// (product_id, cart_id) key. The unique index is what makes AddItem's
// insert a single atomic conditional write.
type CartLineItem struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID        uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:uq_cart_line_items_product_cart"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_cart_line_items_product_cart"`
	Quantity      int       `gorm:"column:quantity;not null;default:1"`
	SelectedSize  *string   `gorm:"column:selected_size"`
	SelectedColor *string   `gorm:"column:selected_color"`
	Product       Product   `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
