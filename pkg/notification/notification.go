// Package notification sends one logical notification over several
// channels.
//
// Define a Notification:
//
//	type OrderPlaced struct{ Order models.CustomerOrder }
//	func (n *OrderPlaced) Kind() string  { return "order_confirmation" }
//	func (n *OrderPlaced) Via() []string { return []string{notification.Mail, notification.Slack} }
//	func (n *OrderPlaced) ToMail() notification.MailData {
//	    return notification.MailData{Subject: "Order Confirmation", Text: "..."}
//	}
//	func (n *OrderPlaced) ToSlack() notification.SlackData {
//	    return notification.SlackData{Text: "New order #42"}
//	}
//
// Send:
//
//	err := notification.New().Send(ctx, "user@example.com", &OrderPlaced{Order: o})
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Channel names.
const (
	Mail  = "mail"
	Slack = "slack"
)

// ------------------- Channel payloads -------------------

// MailData carries one plain-text email.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Text    string
}

// SlackData carries a Slack incoming-webhook message.
type SlackData struct {
	WebhookURL  string            `json:"-"` // overrides the configured webhook if set
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // "good" | "warning" | "danger"
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// ------------------- Notification interfaces -------------------

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Kind labels the notification in logs and metrics.
	Kind() string
	// Via returns the channel names to deliver on.
	Via() []string
}

type Mailable interface {
	ToMail() MailData
}

type Slackable interface {
	ToSlack() SlackData
}

// ------------------- Dispatcher -------------------

// MailFunc delivers one email.
type MailFunc func(ctx context.Context, to string, d MailData) error

// Dispatcher routes notifications to their channels.
type Dispatcher struct {
	mail         MailFunc
	slackWebhook string
}

// New returns a dispatcher that mails through pkg/mail and posts to the
// configured Slack webhook.
func New() *Dispatcher {
	return &Dispatcher{
		mail:         sendMail,
		slackWebhook: config.SlackWebhookURL(),
	}
}

// WithMailer swaps the mail transport.
func (d *Dispatcher) WithMailer(fn MailFunc) *Dispatcher {
	d.mail = fn
	return d
}

// WithSlackWebhook overrides the Slack webhook URL.
func (d *Dispatcher) WithSlackWebhook(url string) *Dispatcher {
	d.slackWebhook = url
	return d
}

// Send delivers n on every channel it names. A failing channel does not
// stop the others; all failures are joined into the returned error.
func (d *Dispatcher) Send(ctx context.Context, address string, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		err := d.dispatch(ctx, address, channel, n)

		status := "sent"
		if err != nil {
			status = "failed"
			logger.WithCtx(ctx).Error("notification: channel failed",
				"kind", n.Kind(), "channel", channel, "error", err)
			errs = append(errs, err)
		}
		if channel == Mail {
			metrics.MailSent.WithLabelValues(n.Kind(), status).Inc()
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case Mail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		data := m.ToMail()
		to := data.To
		if to == "" {
			to = address
		}
		if to == "" {
			return errors.New("notification: no mail recipient")
		}
		return d.mail(ctx, to, data)

	case Slack:
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", n)
		}
		return d.sendSlack(ctx, s.ToSlack())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

// ------------------- Mail channel -------------------

func sendMail(ctx context.Context, to string, d MailData) error {
	return mail.To(to).Subject(d.Subject).Text(d.Text).Send(ctx)
}

// ------------------- Slack channel -------------------

// sendSlack is a no-op when no webhook is configured; the Slack channel is
// optional for every notification.
func (d *Dispatcher) sendSlack(ctx context.Context, s SlackData) error {
	url := s.WebhookURL
	if url == "" {
		url = d.slackWebhook
	}
	if url == "" {
		return nil
	}

	resp, err := http.Post(url).
		WithContext(ctx).
		Body(s).
		Timeout(5 * time.Second).
		Send()
	if err != nil {
		return fmt.Errorf("notification: slack post: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return fmt.Errorf("notification: slack: %w", err)
	}
	return nil
}
