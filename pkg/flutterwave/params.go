package flutterwave

import "github.com/shopspring/decimal"

// Customer is the payer identity passed to the hosted payment page.
type Customer struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phonenumber,omitempty"`
}

// PaymentMeta is the metadata attached to a payment at initiation and echoed
// back verbatim on verification. It carries everything the verification step
// needs to build the receipt.
type PaymentMeta struct {
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
}

// InitiatePaymentParams describes one hosted payment to create.
type InitiatePaymentParams struct {
	TxRef       string
	Amount      decimal.Decimal
	Currency    string
	Customer    Customer
	Meta        PaymentMeta
	Title       string
	Description string
}

// InitiatedPayment is the gateway's answer to Initiate.
type InitiatedPayment struct {
	PaymentLink string
}

// VerifiedTransaction is the gateway's record of a transaction as returned
// by Verify. Status is the raw gateway status string; callers decide what
// counts as success.
type VerifiedTransaction struct {
	TransactionID string
	TxRef         string
	Status        string
	Currency      string
	Amount        decimal.Decimal
	Meta          PaymentMeta
}
