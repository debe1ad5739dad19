package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedOrder() models.CustomerOrder {
	return models.CustomerOrder{
		ID:        42,
		OrderDate: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Total:     decimal.RequireFromString("27.50"),
		ShippingAddress: models.ShippingAddress{
			FullName:      "Alice Smith",
			StreetAddress: "1 Main St",
			City:          "Springfield",
			PostalCode:    "12345",
		},
		PaymentIntentID: "pi_42",
		Items: []models.OrderItem{
			{Product: models.Product{Name: "Mug"}, Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{Product: models.Product{Name: "Coaster"}, Quantity: 1, Price: decimal.RequireFromString("7.5")},
		},
	}
}

func TestOrderConfirmationMail(t *testing.T) {
	n := &services.OrderConfirmation{User: models.User{Username: "alice"}, Order: placedOrder()}
	m := n.ToMail()

	assert.Equal(t, "Order Confirmation - Order #42", m.Subject)
	assert.Contains(t, m.Text, "Hello alice,")
	assert.Contains(t, m.Text, "Order ID: 42\n")
	assert.Contains(t, m.Text, "Order Date: 2026-03-14 09:30:00\n")
	assert.Contains(t, m.Text, "- Mug (Qty: 2, Price: $10.00)\n")
	assert.Contains(t, m.Text, "- Coaster (Qty: 1, Price: $7.50)\n")
	assert.Contains(t, m.Text, "Total Amount: $27.50\n")
	assert.Contains(t, m.Text, "Shipping Address:\nAlice Smith\n1 Main St\nSpringfield, 12345\n")
	assert.Contains(t, m.Text, "The Ecommerce Team")
	assert.Equal(t, []string{notification.Mail, notification.Slack}, n.Via())
}

func TestOrderConfirmationMailWithoutAddress(t *testing.T) {
	order := placedOrder()
	order.ShippingAddress = models.ShippingAddress{}

	m := (&services.OrderConfirmation{User: models.User{Username: "alice"}, Order: order}).ToMail()
	assert.NotContains(t, m.Text, "Shipping Address")
	assert.Contains(t, m.Text, "Total Amount: $27.50")
}

func TestPasswordResetMail(t *testing.T) {
	n := &services.PasswordResetRequested{
		User:     models.User{Username: "bob"},
		Link:     "http://localhost:3000/reset-password?token=abc",
		ValidFor: time.Hour,
	}
	m := n.ToMail()

	assert.Equal(t, "Password Reset Request", m.Subject)
	assert.Contains(t, m.Text, "Hello bob,")
	assert.Contains(t, m.Text, "http://localhost:3000/reset-password?token=abc\n")
	assert.Contains(t, m.Text, "This link is valid for 1 hour(s).")
	assert.Equal(t, []string{notification.Mail}, n.Via())

	n.ValidFor = 20 * time.Minute
	assert.Contains(t, n.ToMail().Text, "valid for 1 hour(s)")
	n.ValidFor = 3 * time.Hour
	assert.Contains(t, n.ToMail().Text, "valid for 3 hour(s)")
}

func TestMailNotifierSendsThroughDispatcher(t *testing.T) {
	type delivery struct {
		to      string
		subject string
	}
	var sent []delivery
	d := notification.New().
		WithSlackWebhook("").
		WithMailer(func(_ context.Context, to string, m notification.MailData) error {
			sent = append(sent, delivery{to: to, subject: m.Subject})
			return nil
		})
	n := services.NewMailNotifier(d)
	user := models.User{Username: "alice", Email: "alice@example.com"}

	require.NoError(t, n.OrderConfirmation(context.Background(), user, placedOrder()))
	require.NoError(t, n.PasswordReset(context.Background(), user, "http://x/reset?token=t", time.Hour))

	assert.Equal(t, []delivery{
		{to: "alice@example.com", subject: "Order Confirmation - Order #42"},
		{to: "alice@example.com", subject: "Password Reset Request"},
	}, sent)
}
