// Package payment integrates the Razorpay payment gateway: order creation
// for the checkout widget and verification of the payment signature the
// widget hands back.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/flight-booking/internal/config"
)

var (
	ErrNotConfigured    = errors.New("razorpay keys are not configured")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	currency   string
	httpClient *http.Client
}

func NewClient(cfg config.RazorpayConfig) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keyID:      strings.TrimSpace(cfg.KeyID),
		keySecret:  strings.TrimSpace(cfg.KeySecret),
		currency:   currency,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// KeyID is the public key the checkout widget is opened with.
func (c *Client) KeyID() string { return c.keyID }

func (c *Client) Currency() string { return c.currency }

func (c *Client) configured() bool { return c.keyID != "" && c.keySecret != "" }

// Order is the subset of a Razorpay order the client needs.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

// ToMinor converts an amount in major units (rupees) to minor units
// (paise), rounding to the nearest unit.
func ToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder creates an order of amountMinor in currency.  An empty
// currency uses the configured default.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (Order, error) {
	if !c.configured() {
		return Order{}, ErrNotConfigured
	}
	if amountMinor <= 0 {
		return Order{}, ErrInvalidAmount
	}
	if currency == "" {
		currency = c.currency
	}
	body, err := json.Marshal(orderRequest{Amount: amountMinor, Currency: currency, Receipt: receipt})
	if err != nil {
		return Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("razorpay request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Order{}, fmt.Errorf("razorpay status: %s: %s", resp.Status, readError(resp.Body))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return Order{}, fmt.Errorf("decode razorpay response: %w", err)
	}
	return order, nil
}

// readError extracts error.description from a Razorpay error body.
func readError(r io.Reader) string {
	var payload struct {
		Error struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	if json.Unmarshal(raw, &payload) == nil && payload.Error.Description != "" {
		return payload.Error.Description
	}
	return strings.TrimSpace(string(raw))
}

// VerifyPaymentSignature checks that signature is the hex HMAC-SHA256 of
// "orderID|paymentID" under the key secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if !c.configured() {
		return ErrNotConfigured
	}
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrInvalidSignature
	}
	expected := Sign(c.keySecret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign computes the signature Razorpay attaches to a successful payment.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
