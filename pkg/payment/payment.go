// Package payment talks to the card processor. Services depend on the
// Gateway interface; StripeGateway is the production implementation.
package payment

import (
	"context"
	"errors"
)

// Payment intent statuses the checkout flow cares about.
const (
	StatusSucceeded            = "succeeded"
	StatusRequiresConfirmation = "requires_confirmation"
	StatusRequiresAction       = "requires_action"
	StatusProcessing           = "processing"
	StatusCanceled             = "canceled"
)

// MetaUserID is the intent metadata key naming the customer who opened it.
const MetaUserID = "user_id"

var ErrNotConfigured = errors.New("payment: STRIPE_SECRET_KEY is not configured")

// Intent is the processor-neutral view of a payment intent. Amount is in
// the currency's minor unit (cents).
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// Succeeded reports whether the funds are settled.
func (i Intent) Succeeded() bool { return i.Status == StatusSucceeded }

// Gateway creates, retrieves and confirms payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (Intent, error)
	RetrieveIntent(ctx context.Context, id string) (Intent, error)
	ConfirmIntent(ctx context.Context, id string) (Intent, error)
}
