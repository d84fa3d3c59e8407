package checkout

import (
	"context"

	"gorm.io/gorm"

	"github.com/granduer/granduer-backend/pkg/db/models"
	"github.com/granduer/granduer-backend/pkg/flutterwave"
)

// Repository defines persistence operations for receipts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByOrderID(ctx context.Context, orderID string) (*models.Receipt, error)
	CreateWithItems(ctx context.Context, receipt *models.Receipt) error
}

// Gateway is the payment capability the orchestrator depends on. The
// Flutterwave client satisfies it; tests substitute stubs.
type Gateway interface {
	Initiate(ctx context.Context, params flutterwave.InitiatePaymentParams) (*flutterwave.InitiatedPayment, error)
	Verify(ctx context.Context, transactionID string) (*flutterwave.VerifiedTransaction, error)
}

// Service defines the checkout operations exposed to the API layer.
type Service interface {
	InitiateCheckout(ctx context.Context, input InitiateInput) (*CheckoutSession, error)
	VerifyCheckout(ctx context.Context, transactionID string) (*VerificationResult, error)
}
