package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-booking/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "s3cret", BaseURL: baseURL, Currency: "inr"})
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "s3cret", pass)

		var body orderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, orderRequest{Amount: 450050, Currency: "INR", Receipt: "rcpt-1"}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_9","amount":450050,"currency":"INR","receipt":"rcpt-1","status":"created"}`))
	}))
	defer srv.Close()

	order, err := newTestClient(srv.URL).CreateOrder(context.Background(), ToMinor(4500.5), "", "rcpt-1")
	require.NoError(t, err)
	assert.Equal(t, Order{ID: "order_9", Amount: 450050, Currency: "INR", Receipt: "rcpt-1", Status: "created"}, order)
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateOrder(context.Background(), 50, "INR", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The amount must be atleast INR 1.00")
}

func TestCreateOrderValidation(t *testing.T) {
	_, err := NewClient(config.RazorpayConfig{}).CreateOrder(context.Background(), 100, "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = newTestClient("http://unused").CreateOrder(context.Background(), 0, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestVerifyPaymentSignature(t *testing.T) {
	c := newTestClient("")
	sig := Sign("s3cret", "order_1", "pay_1")

	assert.NoError(t, c.VerifyPaymentSignature("order_1", "pay_1", sig))
	assert.ErrorIs(t, c.VerifyPaymentSignature("order_1", "pay_2", sig), ErrInvalidSignature)
	assert.ErrorIs(t, c.VerifyPaymentSignature("order_1", "pay_1", ""), ErrInvalidSignature)
	assert.ErrorIs(t, NewClient(config.RazorpayConfig{}).VerifyPaymentSignature("o", "p", "s"), ErrNotConfigured)
}

func TestToMinor(t *testing.T) {
	assert.Equal(t, int64(1999), ToMinor(19.99))
	assert.Equal(t, int64(100), ToMinor(1))
}
