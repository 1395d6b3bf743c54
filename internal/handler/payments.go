package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/payment"
	"github.com/iliyamo/flight-booking/internal/service"
)

// PaymentGateway creates and verifies gateway orders.
type PaymentGateway interface {
	KeyID() string
	Currency() string
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (payment.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) error
}

// TripQuoter prices a trip server-side so the client cannot choose the
// order amount.
type TripQuoter interface {
	QuoteTrip(ctx context.Context, req service.TripQuoteRequest) (service.TripQuote, error)
}

type PaymentHandler struct {
	Gateway PaymentGateway
	Fares   TripQuoter
}

func NewPaymentHandler(g PaymentGateway, f TripQuoter) *PaymentHandler {
	return &PaymentHandler{Gateway: g, Fares: f}
}

// Config handles GET /v1/payments/config: the public key id the checkout
// is opened with.
func (h *PaymentHandler) Config(c echo.Context) error {
	if h.Gateway.KeyID() == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Payment gateway is not configured"})
	}
	return c.JSON(http.StatusOK, echo.Map{"key_id": h.Gateway.KeyID(), "currency": h.Gateway.Currency()})
}

type orderReq struct {
	Amount  float64                   `json:"amount"`
	Receipt string                    `json:"receipt"`
	Trip    *service.TripQuoteRequest `json:"trip"`
}

// CreateOrder handles POST /v1/payments/orders.  When a trip is given its
// quoted total is charged and any explicit amount is ignored.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	amount := req.Amount
	var quote *service.TripQuote
	if req.Trip != nil && strings.TrimSpace(req.Trip.OutboundFlightNumber) != "" {
		q, err := h.Fares.QuoteTrip(ctx, *req.Trip)
		if err != nil {
			return fareError(c, err)
		}
		amount, quote = q.Total, &q
	}

	order, err := h.Gateway.CreateOrder(ctx, payment.ToMinor(amount), "", req.Receipt)
	switch {
	case err == nil:
		resp := echo.Map{"order": order, "key_id": h.Gateway.KeyID(), "amount": amount}
		if quote != nil {
			resp["quote"] = quote
		}
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, payment.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Amount must be positive"})
	case errors.Is(err, payment.ErrNotConfigured):
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Payment gateway is not configured"})
	}
	return c.JSON(http.StatusBadGateway, echo.Map{"message": "Failed to create payment order", "error": err.Error()})
}

type verifyReq struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Verify handles POST /v1/payments/verify.
func (h *PaymentHandler) Verify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	}

	err := h.Gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"verified": true, "payment_id": req.PaymentID})
	case errors.Is(err, payment.ErrNotConfigured):
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Payment gateway is not configured"})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"verified": false, "message": "Payment verification failed"})
}
