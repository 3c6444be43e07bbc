package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"github.com/Leganyst/therapy-booking/internal/booking"
	"github.com/Leganyst/therapy-booking/internal/config"
)

// StripeProcessor — booking.PaymentProcessor поверх Stripe PaymentIntents.
type StripeProcessor struct {
	api           *client.API
	paymentMethod string
}

var _ booking.PaymentProcessor = (*StripeProcessor)(nil)

func NewStripeProcessor(cfg config.StripeConfig, log *zap.Logger) *StripeProcessor {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		LeveledLogger:     log.Sugar(),
		MaxNetworkRetries: stripe.Int64(2),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})

	return &StripeProcessor{api: api, paymentMethod: cfg.PaymentMethod}
}

// Capture создаёт и сразу подтверждает PaymentIntent; ref — его ID.
func (p *StripeProcessor) Capture(ctx context.Context, amountCents int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(p.paymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("stripe payment intent %s is %s", pi.ID, pi.Status)
	}
	return pi.ID, nil
}

// Fees берёт комиссию из balance transaction последнего платежа.
// Stripe не возвращает её при refund, поэтому она вычитается из суммы возврата.
func (p *StripeProcessor) Fees(ctx context.Context, paymentRef string) (booking.FeeBreakdown, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge.balance_transaction")

	pi, err := p.api.PaymentIntents.Get(paymentRef, params)
	if err != nil {
		return booking.FeeBreakdown{}, fmt.Errorf("stripe get payment intent: %w", err)
	}

	fees := booking.FeeBreakdown{
		CapturedCents: pi.AmountReceived,
		Currency:      string(pi.Currency),
	}
	if pi.LatestCharge != nil && pi.LatestCharge.BalanceTransaction != nil {
		fees.FeeCents = pi.LatestCharge.BalanceTransaction.Fee
	}
	return fees, nil
}

func (p *StripeProcessor) Refund(ctx context.Context, paymentRef string, amountCents int64) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentRef),
		Amount:        stripe.Int64(amountCents),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx

	r, err := p.api.Refunds.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe refund: %w", err)
	}
	return r.ID, nil
}
