package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/granduer/granduer-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a receipt repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByOrderID(ctx context.Context, orderID string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("order_id = ?", orderID).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CreateWithItems inserts the receipt header and its line items. gorm saves
// the association in the same statement batch; callers run this inside a
// transaction so the write is all-or-nothing.
func (r *repository) CreateWithItems(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	for i := range receipt.Items {
		if receipt.Items[i].ID == uuid.Nil {
			receipt.Items[i].ID = uuid.New()
		}
		receipt.Items[i].ReceiptID = receipt.ID
	}
	return r.db.WithContext(ctx).Create(receipt).Error
}
