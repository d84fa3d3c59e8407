package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	checkoutsvc "github.com/granduer/granduer-backend/internal/checkout"
	"github.com/granduer/granduer-backend/pkg/db/models"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
)

type stubCheckoutService struct {
	session   *checkoutsvc.CheckoutSession
	result    *checkoutsvc.VerificationResult
	err       error
	verified  string
	initiated string
}

func (s *stubCheckoutService) InitiateCheckout(ctx context.Context, input checkoutsvc.InitiateInput) (*checkoutsvc.CheckoutSession, error) {
	s.initiated = input.Email
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubCheckoutService) VerifyCheckout(ctx context.Context, transactionID string) (*checkoutsvc.VerificationResult, error) {
	s.verified = transactionID
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestCheckoutInitiateSuccess(t *testing.T) {
	svc := &stubCheckoutService{
		session: &checkoutsvc.CheckoutSession{
			PaymentLink: "https://pay.example/x",
			OrderID:     "order-1",
			Amount:      decimal.RequireFromString("36.50"),
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/initiate", strings.NewReader(`{"email":"ada@example.com"}`))
	rec := httptest.NewRecorder()

	CheckoutInitiate(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.initiated != "ada@example.com" {
		t.Fatalf("initiated = %q", svc.initiated)
	}

	var envelope struct {
		Data checkoutSessionResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != "order-1" || envelope.Data.PaymentLink == "" {
		t.Fatalf("data = %+v", envelope.Data)
	}
}

func TestCheckoutInitiateRequiresEmail(t *testing.T) {
	svc := &stubCheckoutService{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/initiate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	CheckoutInitiate(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.initiated != "" {
		t.Fatal("service should not be called")
	}
}

func TestCheckoutVerifyPassesTransactionID(t *testing.T) {
	receipt := &models.Receipt{
		ID:      uuid.New(),
		OrderID: "order-1",
		UserID:  uuid.New(),
		Amount:  decimal.RequireFromString("36.50"),
		Status:  "successful",
	}
	svc := &stubCheckoutService{result: &checkoutsvc.VerificationResult{Receipt: receipt}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/verify?transaction_id=8412000", nil)
	rec := httptest.NewRecorder()

	CheckoutVerify(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.verified != "8412000" {
		t.Fatalf("verified = %q", svc.verified)
	}

	var envelope struct {
		Data verificationResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AlreadyVerified {
		t.Fatal("alreadyVerified should be false")
	}
	if envelope.Data.Receipt.OrderID != "order-1" {
		t.Fatalf("receipt = %+v", envelope.Data.Receipt)
	}
}

func TestCheckoutVerifyReplayIsOK(t *testing.T) {
	receipt := &models.Receipt{ID: uuid.New(), OrderID: "order-1"}
	svc := &stubCheckoutService{result: &checkoutsvc.VerificationResult{Receipt: receipt, AlreadyVerified: true}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/verify?transaction_id=8412000", nil)
	rec := httptest.NewRecorder()

	CheckoutVerify(svc, testControllerLogger())(rec, req)

	// replaying a verified transaction is a success, not an error
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"alreadyVerified":true`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCheckoutVerifyGatewayErrorMapsTo502(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeGateway, "payment gateway unreachable")}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/verify?transaction_id=8412000", nil)
	rec := httptest.NewRecorder()

	CheckoutVerify(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestCheckoutVerifyPaymentFailedMapsTo400(t *testing.T) {
	svc := &stubCheckoutService{
		err: pkgerrors.New(pkgerrors.CodePaymentFailed, "Payment not successful").
			WithDetails(map[string]any{"payment_status": "failed"}),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/verify?transaction_id=8412000", nil)
	rec := httptest.NewRecorder()

	CheckoutVerify(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "payment_status") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
