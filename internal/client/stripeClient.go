package client

import (
	"context"
	"fmt"
	"time"

	"habitflow-payments/internal/config"

	stripe "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
	stripecustomer "github.com/stripe/stripe-go/v82/customer"
	stripesub "github.com/stripe/stripe-go/v82/subscription"
)

type StripeCustomer struct {
	ID    string
	Email string
	Name  string
}

type StripeClient interface {
	GetCustomer(ctx context.Context, customerID string) (*StripeCustomer, error)
	// FindSessionByPaymentIntent returns the checkout session id a payment
	// intent originated from, or "" when none exists.
	FindSessionByPaymentIntent(ctx context.Context, paymentIntentID string) (string, error)
	ScheduleCancelAt(ctx context.Context, subscriptionID string, cancelAt time.Time) error
}

type stripeClientImpl struct{}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	stripe.Key = stripeCfg.SecretKey
	return &stripeClientImpl{}
}

func (c *stripeClientImpl) GetCustomer(ctx context.Context, customerID string) (*StripeCustomer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := stripecustomer.Get(customerID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get customer: %w", err)
	}

	return &StripeCustomer{
		ID:    cust.ID,
		Email: cust.Email,
		Name:  cust.Name,
	}, nil
}

func (c *stripeClientImpl) FindSessionByPaymentIntent(ctx context.Context, paymentIntentID string) (string, error) {
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := stripesession.List(params)
	for iter.Next() {
		return iter.CheckoutSession().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("stripe list checkout sessions: %w", err)
	}

	return "", nil
}

func (c *stripeClientImpl) ScheduleCancelAt(ctx context.Context, subscriptionID string, cancelAt time.Time) error {
	params := &stripe.SubscriptionParams{
		CancelAt: stripe.Int64(cancelAt.Unix()),
	}
	params.Context = ctx

	if _, err := stripesub.Update(subscriptionID, params); err != nil {
		return fmt.Errorf("stripe update subscription: %w", err)
	}

	return nil
}
