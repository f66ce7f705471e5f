// Package gateway creates payment intents with the card processor.
package gateway

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// PaymentGateway returns the client secret of a new card payment intent.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string) (string, error)
}

// Stripe is the PaymentGateway backed by the Stripe API.
type Stripe struct {
	api *client.API
}

// NewStripe builds a gateway authenticated with secretKey.
func NewStripe(secretKey string) *Stripe {
	return newStripe(secretKey, nil)
}

func newStripe(secretKey string, backends *stripe.Backends) *Stripe {
	return &Stripe{api: client.New(secretKey, backends)}
}

// CreatePaymentIntent creates a card-only intent for amountMinor units of currency.
func (s *Stripe) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
