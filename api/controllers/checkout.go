package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/granduer/granduer-backend/api/responses"
	"github.com/granduer/granduer-backend/api/validators"
	checkoutsvc "github.com/granduer/granduer-backend/internal/checkout"
	"github.com/granduer/granduer-backend/pkg/db/models"
	"github.com/granduer/granduer-backend/pkg/logger"
)

// CheckoutInitiate starts a checkout for the customer's current cart and
// returns the hosted payment link.
func CheckoutInitiate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload initiateCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.InitiateCheckout(r.Context(), checkoutsvc.InitiateInput{Email: payload.Email})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutSessionResponse{
			PaymentLink: session.PaymentLink,
			OrderID:     session.OrderID,
			Amount:      session.Amount,
		})
	}
}

// CheckoutVerify reconciles a gateway callback into a receipt. Replays of
// an already-verified transaction return the existing receipt with 200.
func CheckoutVerify(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID := r.URL.Query().Get("transaction_id")

		result, err := svc.VerifyCheckout(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, verificationResponse{
			Receipt:         newReceiptResponse(result.Receipt),
			AlreadyVerified: result.AlreadyVerified,
		})
	}
}

type initiateCheckoutRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type checkoutSessionResponse struct {
	PaymentLink string          `json:"paymentLink"`
	OrderID     string          `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
}

type verificationResponse struct {
	Receipt         receiptResponse `json:"receipt"`
	AlreadyVerified bool            `json:"alreadyVerified"`
}

type receiptResponse struct {
	ID            uuid.UUID             `json:"id"`
	OrderID       string                `json:"orderId"`
	UserID        uuid.UUID             `json:"userId"`
	Name          string                `json:"name"`
	Email         string                `json:"email"`
	Phone         *string               `json:"phone,omitempty"`
	Amount        decimal.Decimal       `json:"amount"`
	TransactionID string                `json:"transactionId"`
	Status        string                `json:"status"`
	CreatedAt     time.Time             `json:"createdAt"`
	Items         []receiptItemResponse `json:"items"`
}

type receiptItemResponse struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

func newReceiptResponse(receipt *models.Receipt) receiptResponse {
	items := make([]receiptItemResponse, 0, len(receipt.Items))
	for _, line := range receipt.Items {
		items = append(items, receiptItemResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Image:     line.Image,
			Quantity:  line.Quantity,
			Total:     line.Total,
		})
	}
	return receiptResponse{
		ID:            receipt.ID,
		OrderID:       receipt.OrderID,
		UserID:        receipt.UserID,
		Name:          receipt.CustomerName,
		Email:         receipt.CustomerEmail,
		Phone:         receipt.CustomerPhone,
		Amount:        receipt.Amount,
		TransactionID: receipt.TransactionID,
		Status:        receipt.Status,
		CreatedAt:     receipt.CreatedAt,
		Items:         items,
	}
}
