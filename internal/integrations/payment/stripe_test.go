package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Leganyst/therapy-booking/internal/config"
)

func newTestProcessor(t *testing.T, handler http.HandlerFunc) *StripeProcessor {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStripeProcessor(config.StripeConfig{
		SecretKey:     "sk_test_123",
		APIURL:        srv.URL,
		PaymentMethod: "pm_card_visa",
	}, zap.NewNop())
}

func TestStripeProcessor_Capture(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "12000", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "true", r.PostForm.Get("confirm"))
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":12000,"currency":"usd","status":"succeeded"}`))
	})

	ref, err := p.Capture(context.Background(), 12000, "usd")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", ref)
}

func TestStripeProcessor_CaptureNotSucceeded(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","status":"requires_action"}`))
	})

	_, err := p.Capture(context.Background(), 12000, "usd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires_action")
}

func TestStripeProcessor_Fees(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)
		assert.Equal(t, "latest_charge.balance_transaction", r.URL.Query().Get("expand[0]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "pi_123",
			"object": "payment_intent",
			"amount_received": 12000,
			"currency": "usd",
			"status": "succeeded",
			"latest_charge": {
				"id": "ch_1",
				"object": "charge",
				"balance_transaction": {"id": "txn_1", "object": "balance_transaction", "fee": 378}
			}
		}`))
	})

	fees, err := p.Fees(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, int64(12000), fees.CapturedCents)
	assert.Equal(t, int64(378), fees.FeeCents)
	assert.Equal(t, "usd", fees.Currency)
	assert.Equal(t, int64(11622), fees.NetRefundCents())
}

func TestStripeProcessor_Refund(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_123", r.PostForm.Get("payment_intent"))
		assert.Equal(t, "11622", r.PostForm.Get("amount"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"re_1","object":"refund","amount":11622,"status":"succeeded"}`))
	})

	ref, err := p.Refund(context.Background(), "pi_123", 11622)
	require.NoError(t, err)
	assert.Equal(t, "re_1", ref)
}

func TestStripeProcessor_RefundError(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"charge_already_refunded","message":"Charge has already been refunded."}}`))
	})

	_, err := p.Refund(context.Background(), "pi_123", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already been refunded")
}
