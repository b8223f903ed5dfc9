package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"
)

// StripeProvider реализует Provider поверх Stripe Checkout
type StripeProvider struct {
	client        *client.API
	currency      string
	successURL    string
	cancelURL     string
	webhookSecret string
}

// NewStripeProvider настраивает клиент Stripe с ограниченным таймаутом:
// провайдер недоступен — это не фатально, заказ остается pending
func NewStripeProvider(secretKey, webhookSecret, currency, successURL, cancelURL string, timeout time.Duration) *StripeProvider {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:    &http.Client{Timeout: timeout},
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
	})
	return &StripeProvider{
		client:        client.New(secretKey, &stripe.Backends{API: backend}),
		currency:      currency,
		successURL:    successURL,
		cancelURL:     cancelURL,
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, orderID string, items []CheckoutItem) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.currency),
				UnitAmount: stripe.Int64(item.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		ClientReferenceID:  stripe.String(orderID),
		// {CHECKOUT_SESSION_ID} подставляет сам Stripe при redirect-е
		SuccessURL: stripe.String(p.successURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.cancelURL + "?session_id={CHECKOUT_SESSION_ID}"),
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID)

	sess, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := p.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve checkout session: %w", err)
	}
	return sessionStatus(sess), nil
}

func (p *StripeProvider) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	var event stripe.Event
	if p.webhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, signatureHeader, p.webhookSecret)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		event = verified
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("stripe: unmarshal webhook event: %w", err)
	}

	out := &WebhookEvent{Type: string(event.Type)}
	switch event.Type {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("stripe: unmarshal checkout session: %w", err)
		}
		out.SessionID = sess.ID
		out.OrderID = sess.ClientReferenceID
		out.AmountTotal = sess.AmountTotal
		if sess.PaymentIntent != nil {
			out.PaymentRef = sess.PaymentIntent.ID
		}
	}
	return out, nil
}

func sessionStatus(sess *stripe.CheckoutSession) *SessionStatus {
	status := &SessionStatus{
		ID:          sess.ID,
		OrderID:     sess.ClientReferenceID,
		Paid:        sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal: sess.AmountTotal,
	}
	if sess.PaymentIntent != nil {
		status.PaymentRef = sess.PaymentIntent.ID
	}
	return status
}
