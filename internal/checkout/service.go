package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/granduer/granduer-backend/pkg/config"
	"github.com/granduer/granduer-backend/pkg/db"
	"github.com/granduer/granduer-backend/pkg/db/models"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
	"github.com/granduer/granduer-backend/pkg/flutterwave"
	"github.com/granduer/granduer-backend/pkg/logger"
)

// Gateway status for a settled payment.
const statusSuccessful = "successful"

// Legacy storefront error messages kept verbatim.
const (
	msgUserNotFound      = "User does not exist!"
	msgCartNotFound      = "User cart does not exist!"
	msgMissingTxID       = "Transaction ID is missing!"
	msgPaymentNotSuccess = "Payment not successful"
)

const receiptOrderConstraint = "idx_receipts_order_id"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLoader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type cartLoader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo    Repository
	users   userLoader
	carts   cartLoader
	gateway Gateway
	tx      txRunner
	cfg     config.CheckoutConfig
	logger  *logger.Logger
}

// NewService wires the checkout orchestrator.
func NewService(
	repo Repository,
	users userLoader,
	carts cartLoader,
	gateway Gateway,
	tx txRunner,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) Service {
	return &service{
		repo:    repo,
		users:   users,
		carts:   carts,
		gateway: gateway,
		tx:      tx,
		cfg:     cfg,
		logger:  logg,
	}
}

// InitiateCheckout totals the user's cart, mints a fresh order id, and asks
// the gateway for a hosted payment link. The user and order ids travel in
// the payment metadata so the verification callback can find its way back.
func (s *service) InitiateCheckout(ctx context.Context, input InitiateInput) (*CheckoutSession, error) {
	if input.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgUserNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up user")
	}

	userCart, err := s.carts.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgCartNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if len(userCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgCartNotFound)
	}

	total := cartTotal(userCart)
	orderID := uuid.NewString()

	ctx = s.logger.WithOrderID(s.logger.WithUserID(ctx, user.ID.String()), orderID)

	payment, err := s.gateway.Initiate(ctx, flutterwave.InitiatePaymentParams{
		TxRef:    orderID,
		Amount:   total,
		Currency: s.cfg.Currency,
		Customer: flutterwave.Customer{
			Email:       user.Email,
			Name:        user.FullName(),
			PhoneNumber: phoneOf(user),
		},
		Meta: flutterwave.PaymentMeta{
			UserID:  user.ID.String(),
			OrderID: orderID,
		},
		Title:       s.cfg.PaymentTitle,
		Description: s.cfg.PaymentStatement,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "checkout initiated")
	return &CheckoutSession{
		PaymentLink: payment.PaymentLink,
		OrderID:     orderID,
		Amount:      total,
	}, nil
}

// VerifyCheckout reconciles a gateway callback into a receipt. Verification
// is idempotent: a receipt that already exists for the order is returned
// unchanged, and a lost insert race is resolved by re-reading the winner's
// receipt.
func (s *service) VerifyCheckout(ctx context.Context, transactionID string) (*VerificationResult, error) {
	if transactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgMissingTxID)
	}

	txn, err := s.gateway.Verify(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.Status != statusSuccessful {
		return nil, pkgerrors.New(pkgerrors.CodePaymentFailed, msgPaymentNotSuccess).
			WithDetails(map[string]any{"payment_status": txn.Status})
	}

	userID, orderID, err := extractMeta(txn)
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(s.logger.WithUserID(ctx, userID.String()), orderID)

	existing, err := s.findReceipt(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info(ctx, "order already verified")
		return &VerificationResult{Receipt: existing, AlreadyVerified: true}, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgUserNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up user")
	}

	receipt := buildReceipt(user, txn, orderID)
	if userCart, err := s.carts.FindByUserID(ctx, userID); err == nil {
		receipt.Items = snapshotItems(userCart)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateWithItems(ctx, receipt)
	})
	if err != nil {
		if db.IsUniqueViolation(err, receiptOrderConstraint) {
			// a concurrent verification won the insert race
			winner, findErr := s.repo.FindByOrderID(ctx, orderID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "re-reading receipt after race")
			}
			s.logger.Info(ctx, "order already verified")
			return &VerificationResult{Receipt: winner, AlreadyVerified: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating receipt")
	}

	s.logger.Info(ctx, "receipt created")
	return &VerificationResult{Receipt: receipt}, nil
}

func (s *service) findReceipt(ctx context.Context, orderID string) (*models.Receipt, error) {
	receipt, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading receipt")
	}
	return receipt, nil
}

// extractMeta recovers the user and order ids the initiation step embedded.
// A successful transaction missing either is a gateway contract breach, not
// a client mistake.
func extractMeta(txn *flutterwave.VerifiedTransaction) (uuid.UUID, string, error) {
	if txn.Meta.OrderID == "" || txn.Meta.UserID == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeGateway, "transaction metadata is incomplete").
			WithDetails(map[string]any{"transaction_id": txn.TransactionID})
	}
	userID, err := uuid.Parse(txn.Meta.UserID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeGateway, err, "transaction metadata is malformed").
			WithDetails(map[string]any{"transaction_id": txn.TransactionID})
	}
	return userID, txn.Meta.OrderID, nil
}

func buildReceipt(user *models.User, txn *flutterwave.VerifiedTransaction, orderID string) *models.Receipt {
	return &models.Receipt{
		OrderID:       orderID,
		UserID:        user.ID,
		CustomerName:  user.FullName(),
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
		Amount:        txn.Amount,
		TransactionID: txn.TransactionID,
		Status:        txn.Status,
	}
}

func snapshotItems(userCart *models.Cart) []models.ReceiptLineItem {
	items := make([]models.ReceiptLineItem, 0, len(userCart.Items))
	for _, line := range userCart.Items {
		qty := decimal.NewFromInt(int64(line.Quantity))
		items = append(items, models.ReceiptLineItem{
			ProductID: line.ProductID,
			Name:      line.Product.Name,
			Price:     line.Product.Price,
			Image:     line.Product.Image,
			Quantity:  line.Quantity,
			Total:     line.Product.Price.Mul(qty),
		})
	}
	return items
}

func cartTotal(userCart *models.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range userCart.Items {
		qty := decimal.NewFromInt(int64(line.Quantity))
		total = total.Add(line.Product.Price.Mul(qty))
	}
	return total
}

func phoneOf(user *models.User) string {
	if user.Phone == nil {
		return ""
	}
	return *user.Phone
}
