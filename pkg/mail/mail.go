// Package mail is a fluent SMTP mailer.
//
//	err := mail.To("jane@example.com").
//	    Subject("Order Confirmation - Order #42").
//	    Text(body).
//	    Send(ctx)
//
// When MAIL_HOST or MAIL_USERNAME is not configured, Send logs the message
// instead of delivering it, so local environments work without SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// ── Config ───────────────────────────────────────────────────────────────────

// SMTP holds connection credentials.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Configured reports whether real delivery is possible.
func (c SMTP) Configured() bool {
	return c.Host != "" && c.Username != ""
}

// DefaultSMTP reads the MAIL_* settings.
func DefaultSMTP() SMTP {
	return SMTP{
		Host:     config.MailHost(),
		Port:     config.MailPort(),
		Username: config.MailUsername(),
		Password: config.MailPassword(),
		From:     config.MailFrom(),
		FromName: config.MailFromName(),
	}
}

// ── Message ──────────────────────────────────────────────────────────────────

// Message is a fluent builder for one email.
type Message struct {
	to      []string
	subject string
	body    string
	isHTML  bool
	smtpCfg SMTP
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{
		to:      addresses,
		smtpCfg: DefaultSMTP(),
	}
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// HTML sets an HTML body.
func (m *Message) HTML(html string) *Message {
	m.body = html
	m.isHTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.isHTML = false
	return m
}

// UseConfig overrides the SMTP settings for this message.
func (m *Message) UseConfig(cfg SMTP) *Message {
	m.smtpCfg = cfg
	return m
}

// ── Sending ──────────────────────────────────────────────────────────────────

// Send delivers the message, or logs it when SMTP is not configured.
func (m *Message) Send(ctx context.Context) error {
	if len(m.to) == 0 {
		return fmt.Errorf("mail: no recipients")
	}

	cfg := m.smtpCfg
	if !cfg.Configured() {
		logger.WithCtx(ctx).Info("mail: SMTP not configured, simulating send",
			"to", strings.Join(m.to, ", "),
			"subject", m.subject,
			"body", m.body,
		)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	raw := m.buildRaw(fmt.Sprintf("%s <%s>", cfg.FromName, from))

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	// Implicit TLS on 465, STARTTLS negotiated by SendMail otherwise.
	if cfg.Port == "465" {
		return sendTLS(addr, auth, from, m.to, raw, cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, from, m.to, raw); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func sendTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (m *Message) buildRaw(from string) []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.body, "\n", "\r\n"))
	return []byte(b.String())
}
