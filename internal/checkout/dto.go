package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/granduer/granduer-backend/pkg/db/models"
)

// InitiateInput identifies the customer starting a checkout.
type InitiateInput struct {
	Email string
}

// CheckoutSession is the outcome of a successful initiation: the hosted
// payment link the client redirects to, plus the order identifier the
// verification callback will carry back.
type CheckoutSession struct {
	PaymentLink string
	OrderID     string
	Amount      decimal.Decimal
}

// VerificationResult wraps the receipt for a verified payment.
// AlreadyVerified reports whether the receipt predates this call.
type VerificationResult struct {
	Receipt         *models.Receipt
	AlreadyVerified bool
}
