package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/granduer/granduer-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetOrCreateForUser returns the user's cart, creating it if absent. The
// insert ignores the unique violation on user_id so two concurrent callers
// both land on the same row.
func (r *repository) GetOrCreateForUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart := models.Cart{ID: uuid.New(), UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&cart).Error
	if err != nil {
		return nil, err
	}

	var existing models.Cart
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) InsertLineItem(ctx context.Context, item *models.CartLineItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateLineItem(ctx context.Context, cartID, productID uuid.UUID, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartLineItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// DecrementLineItem lowers the quantity by one in a single conditional
// statement. Zero rows means the item is absent or already at quantity 1.
func (r *repository) DecrementLineItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartLineItem{}).
		Where("cart_id = ? AND product_id = ? AND quantity > 1", cartID, productID).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteLineItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartLineItem{})
	return res.RowsAffected, res.Error
}
