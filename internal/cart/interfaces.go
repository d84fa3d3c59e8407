package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/granduer/granduer-backend/pkg/db/models"
)

// Repository defines persistence operations for carts and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrCreateForUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	InsertLineItem(ctx context.Context, item *models.CartLineItem) error
	UpdateLineItem(ctx context.Context, cartID, productID uuid.UUID, updates map[string]any) (int64, error)
	DecrementLineItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error)
	DeleteLineItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error)
}

// Service defines the cart operations exposed to the API layer.
type Service interface {
	AddItem(ctx context.Context, input AddItemInput) (*models.CartLineItem, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) error
	RemoveItem(ctx context.Context, input RemoveItemInput) error
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}
