// Package flutterwave is a thin client for the Flutterwave v3 REST API,
// covering hosted payment initiation and transaction verification.
package flutterwave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/granduer/granduer-backend/pkg/config"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
	"github.com/granduer/granduer-backend/pkg/logger"
)

const statusOK = "success"

var (
	errSecretKeyRequired = errors.New("flutterwave secret key is required")
	errLoggerRequired    = errors.New("flutterwave logger is required")
)

// Client exposes the gateway operations the checkout flow needs with
// centralized auth, logging, and error mapping.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	redirectURL string
	logger      *logger.Logger
}

func NewClient(cfg config.FlutterwaveConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:   secret,
		redirectURL: cfg.RedirectURL,
		logger:      logg,
	}, nil
}

// envelope is the common Flutterwave response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initiateRequest struct {
	TxRef          string         `json:"tx_ref"`
	Amount         string         `json:"amount"`
	Currency       string         `json:"currency"`
	RedirectURL    string         `json:"redirect_url"`
	Customer       Customer       `json:"customer"`
	Meta           PaymentMeta    `json:"meta"`
	Customizations customizations `json:"customizations"`
}

type customizations struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type initiateData struct {
	Link string `json:"link"`
}

type verifyData struct {
	ID       json.Number     `json:"id"`
	TxRef    string          `json:"tx_ref"`
	Status   string          `json:"status"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Meta     PaymentMeta     `json:"meta"`
}

// Initiate creates a hosted payment and returns its checkout link.
func (c *Client) Initiate(ctx context.Context, params InitiatePaymentParams) (*InitiatedPayment, error) {
	body := initiateRequest{
		TxRef:       params.TxRef,
		Amount:      params.Amount.String(),
		Currency:    params.Currency,
		RedirectURL: c.redirectURL,
		Customer:    params.Customer,
		Meta:        params.Meta,
		Customizations: customizations{
			Title:       params.Title,
			Description: params.Description,
		},
	}

	env, err := c.do(ctx, http.MethodPost, "/v3/payments", body)
	if err != nil {
		return nil, err
	}

	var data initiateData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decode payment initiation response")
	}
	if data.Link == "" {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "gateway returned no payment link")
	}

	ctx = c.logger.WithOrderID(ctx, params.Meta.OrderID)
	c.logger.Info(ctx, "payment initiated")

	return &InitiatedPayment{PaymentLink: data.Link}, nil
}

// Verify fetches the gateway's record of a transaction by its gateway id.
func (c *Client) Verify(ctx context.Context, transactionID string) (*VerifiedTransaction, error) {
	path := fmt.Sprintf("/v3/transactions/%s/verify", url.PathEscape(transactionID))
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var data verifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decode transaction verification response")
	}

	return &VerifiedTransaction{
		TransactionID: data.ID.String(),
		TxRef:         data.TxRef,
		Status:        data.Status,
		Currency:      data.Currency,
		Amount:        data.Amount,
		Meta:          data.Meta,
	}, nil
}

// do sends one API request and returns the decoded envelope. Transport
// failures and non-success envelopes both map to gateway errors; the
// distinction lives in the wrapped cause and details.
func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode gateway request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "read gateway response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decode gateway response").
			WithDetails(map[string]any{"http_status": resp.StatusCode})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Status != statusOK {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "payment gateway rejected the request").
			WithDetails(map[string]any{
				"http_status":    resp.StatusCode,
				"gateway_status": env.Status,
				"message":        env.Message,
			})
	}

	return &env, nil
}
