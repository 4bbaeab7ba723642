package services

import (
	"bytes"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/coupon"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeClient is the payment-gateway surface the checkout flow depends on.
type StripeClient interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	RetrieveCheckoutSession(id string) (*stripe.CheckoutSession, error)
	ListLineItems(id string) ([]*stripe.LineItem, error)
	CreateOnceCoupon(percentOff int) (string, error)
}

// StripeService implements StripeClient against the hosted Stripe API.
type StripeService struct {
	webhookKey string
}

// NewStripeService configures the global Stripe key and returns a client.
func NewStripeService(secretKey, webhookKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{webhookKey: webhookKey}
}

func (s *StripeService) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

func (s *StripeService) RetrieveCheckoutSession(id string) (*stripe.CheckoutSession, error) {
	return session.Get(id, nil)
}

// ListLineItems returns the finalized line items of a checkout session.
func (s *StripeService) ListLineItems(id string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(id),
	}

	var items []*stripe.LineItem
	iter := session.ListLineItems(params)
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateOnceCoupon creates a single-use percent-off coupon on the gateway
// and returns its id for attachment to a session.
func (s *StripeService) CreateOnceCoupon(percentOff int) (string, error) {
	c, err := coupon.New(&stripe.CouponParams{
		PercentOff: stripe.Float64(float64(percentOff)),
		Duration:   stripe.String(string(stripe.CouponDurationOnce)),
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// ParseWebhook verifies a Stripe webhook signature and decodes the event.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))

	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.webhookKey)
}
