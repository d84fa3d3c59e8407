package cart

import "github.com/google/uuid"

// AddItemInput describes one product to place in a user's cart. Quantity
// defaults to 1 when zero.
type AddItemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Size      *string
	Color     *string
}

// UpdateItemInput carries a partial update for an existing line item. Nil
// fields are left untouched.
type UpdateItemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  *int
	Size      *string
	Color     *string
}

// RemoveItemInput identifies the line item to decrement or delete.
type RemoveItemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}
