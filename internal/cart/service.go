package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/granduer/granduer-backend/pkg/db"
	"github.com/granduer/granduer-backend/pkg/db/models"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
	"github.com/granduer/granduer-backend/pkg/logger"
)

// Legacy storefront error messages. Kept verbatim because mobile clients
// match on them.
const (
	msgProductNotFound  = "Product does not exist in database!"
	msgItemExists       = "Item already exists in cart!"
	msgCartNotFound     = "Cart does not exist for this user!"
	msgUserCartNotFound = "User cart does not exist!"
	msgItemNotFound     = "Item does not exist in cart!"
)

const lineItemConstraint = "uq_cart_line_items_product_cart"

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     Repository
	products productLoader
	logger   *logger.Logger
}

// NewService wires the cart service with its repository and product lookup.
func NewService(repo Repository, products productLoader, logg *logger.Logger) Service {
	return &service{repo: repo, products: products, logger: logg}
}

// AddItem places a product in the user's cart, creating the cart on first
// use. Adding a product that is already present is rejected; clients adjust
// quantity through UpdateItem instead.
func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.CartLineItem, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up product")
	}

	userCart, err := s.repo.GetOrCreateForUser(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}

	item := &models.CartLineItem{
		CartID:        userCart.ID,
		ProductID:     product.ID,
		Quantity:      quantity,
		SelectedSize:  input.Size,
		SelectedColor: input.Color,
	}
	if err := s.repo.InsertLineItem(ctx, item); err != nil {
		if db.IsUniqueViolation(err, lineItemConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, msgItemExists)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting cart item")
	}

	ctx = s.logger.WithUserID(ctx, input.UserID.String())
	s.logger.Info(ctx, "cart item added")

	item.Product = *product
	return item, nil
}

// UpdateItem applies a partial update to an existing line item. Quantity, if
// present, must stay positive; removal goes through RemoveItem.
func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	updates := map[string]any{}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		updates["quantity"] = *input.Quantity
	}
	if input.Size != nil {
		updates["selected_size"] = *input.Size
	}
	if input.Color != nil {
		updates["selected_color"] = *input.Color
	}
	if len(updates) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	userCart, err := s.findCart(ctx, input.UserID, msgCartNotFound)
	if err != nil {
		return err
	}

	rows, err := s.repo.UpdateLineItem(ctx, userCart.ID, input.ProductID, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	return nil
}

// RemoveItem lowers the line item's quantity by one, deleting the row when
// the quantity reaches zero. Both paths are single conditional statements,
// so concurrent removals never drive the quantity negative.
func (s *service) RemoveItem(ctx context.Context, input RemoveItemInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	userCart, err := s.findCart(ctx, input.UserID, msgCartNotFound)
	if err != nil {
		return err
	}

	rows, err := s.repo.DecrementLineItem(ctx, userCart.ID, input.ProductID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing cart item")
	}
	if rows > 0 {
		return nil
	}

	rows, err = s.repo.DeleteLineItem(ctx, userCart.ID, input.ProductID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting cart item")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	return nil
}

// GetCart returns the user's cart with line items and product data.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.findCart(ctx, userID, msgUserCartNotFound)
}

func (s *service) findCart(ctx context.Context, userID uuid.UUID, missingMsg string) (*models.Cart, error) {
	userCart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, missingMsg)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return userCart, nil
}
