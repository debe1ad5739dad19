package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// StripeGateway implements Gateway with the Stripe PaymentIntents API.
type StripeGateway struct {
	client paymentintent.Client
	key    string
}

// NewStripeGateway returns a gateway using secretKey. Calls fail with
// ErrNotConfigured when the key is empty.
func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{
		client: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		key:    secretKey,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (Intent, error) {
	if g.key == "" {
		return Intent{}, ErrNotConfigured
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.client.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("payment: create intent: %w", err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, id string) (Intent, error) {
	if g.key == "" {
		return Intent{}, ErrNotConfigured
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.client.Get(id, params)
	if err != nil {
		return Intent{}, fmt.Errorf("payment: retrieve intent %s: %w", id, err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) ConfirmIntent(ctx context.Context, id string) (Intent, error) {
	if g.key == "" {
		return Intent{}, ErrNotConfigured
	}

	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	pi, err := g.client.Confirm(id, params)
	if err != nil {
		return Intent{}, fmt.Errorf("payment: confirm intent %s: %w", id, err)
	}
	return toIntent(pi), nil
}

func toIntent(pi *stripe.PaymentIntent) Intent {
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}
