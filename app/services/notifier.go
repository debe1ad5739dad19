package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/notification"
)

// Notifier sends the customer-facing emails.
type Notifier interface {
	OrderConfirmation(ctx context.Context, user models.User, order models.CustomerOrder) error
	PasswordReset(ctx context.Context, user models.User, link string, validFor time.Duration) error
}

// MailNotifier delivers notifications through a notification.Dispatcher.
type MailNotifier struct {
	dispatcher *notification.Dispatcher
}

func NewMailNotifier(d *notification.Dispatcher) *MailNotifier {
	return &MailNotifier{dispatcher: d}
}

func (n *MailNotifier) OrderConfirmation(ctx context.Context, user models.User, order models.CustomerOrder) error {
	return n.dispatcher.Send(ctx, user.Email, &OrderConfirmation{User: user, Order: order})
}

func (n *MailNotifier) PasswordReset(ctx context.Context, user models.User, link string, validFor time.Duration) error {
	return n.dispatcher.Send(ctx, user.Email, &PasswordResetRequested{User: user, Link: link, ValidFor: validFor})
}

const signature = "Best regards,\nThe Ecommerce Team"

// ── Order confirmation ───────────────────────────────────────────────────────

type OrderConfirmation struct {
	User  models.User
	Order models.CustomerOrder
}

func (n *OrderConfirmation) Kind() string { return "order_confirmation" }

func (n *OrderConfirmation) Via() []string {
	return []string{notification.Mail, notification.Slack}
}

func (n *OrderConfirmation) ToMail() notification.MailData {
	o := n.Order

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", n.User.Username)
	b.WriteString("Thank you for your order! Here are the details:\n\n")
	fmt.Fprintf(&b, "Order ID: %d\n", o.ID)
	fmt.Fprintf(&b, "Order Date: %s\n", o.OrderDate.Format("2006-01-02 15:04:05"))
	b.WriteString("Items:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s (Qty: %d, Price: $%s)\n", it.Product.Name, it.Quantity, it.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total Amount: $%s\n\n", o.Total.StringFixed(2))

	if a := o.ShippingAddress; !a.IsZero() {
		b.WriteString("Shipping Address:\n")
		b.WriteString(a.FullName + "\n")
		b.WriteString(a.StreetAddress + "\n")
		b.WriteString(a.City + ", " + a.PostalCode + "\n\n")
	}

	b.WriteString("We appreciate your business! If you have any questions, feel free to contact us.\n\n")
	b.WriteString(signature)

	return notification.MailData{
		Subject: fmt.Sprintf("Order Confirmation - Order #%d", o.ID),
		Text:    b.String(),
	}
}

func (n *OrderConfirmation) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: fmt.Sprintf("New order #%d from %s", n.Order.ID, n.User.Username),
		Attachments: []notification.SlackAttachment{{
			Color: "good",
			Title: fmt.Sprintf("$%s, %d item(s)", n.Order.Total.StringFixed(2), len(n.Order.Items)),
			Text:  n.Order.PaymentIntentID,
		}},
	}
}

// ── Password reset ───────────────────────────────────────────────────────────

type PasswordResetRequested struct {
	User     models.User
	Link     string
	ValidFor time.Duration
}

func (n *PasswordResetRequested) Kind() string  { return "password_reset" }
func (n *PasswordResetRequested) Via() []string { return []string{notification.Mail} }

func (n *PasswordResetRequested) ToMail() notification.MailData {
	hours := int(n.ValidFor.Hours())
	if hours < 1 {
		hours = 1
	}
	body := fmt.Sprintf("Hello %s,\n\n"+
		"You have requested to reset your password. Click the link below to reset it:\n"+
		"%s\n\n"+
		"This link is valid for %d hour(s). If you did not request a password reset, please ignore this email.\n\n"+
		"%s", n.User.Username, n.Link, hours, signature)

	return notification.MailData{Subject: "Password Reset Request", Text: body}
}
