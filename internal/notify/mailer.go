// Package notify sends transactional email: the newsletter welcome message
// and order confirmations.
package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"

	"watchstore/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ErrDisabled is returned when no SMTP server is configured.
var ErrDisabled = errors.New("email delivery is not configured")

const storeName = "Rolex"

// Mailer delivers the store's emails.
type Mailer interface {
	SendWelcome(ctx context.Context, email string) error
	SendOrderConfirmation(ctx context.Context, event models.OrderEvent) error
}

// SMTPConfig holds SMTP connection details.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// New returns an SMTP mailer, or a LogMailer when cfg has no host.
func New(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer sends HTML email through an SMTP relay.
type SMTPMailer struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTPMailer. From defaults to the username.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

// SendWelcome sends the newsletter welcome message.
func (m *SMTPMailer) SendWelcome(ctx context.Context, email string) error {
	return m.send(ctx, email, "Welcome to "+storeName+" Newsletter!", "welcome.html", map[string]string{
		"Store": storeName,
	})
}

// SendOrderConfirmation tells the customer their order was received.
func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, event models.OrderEvent) error {
	if event.Email == "" {
		return fmt.Errorf("order %s has no customer email", event.OrderID)
	}
	return m.send(ctx, event.Email, "Your "+storeName+" order "+event.OrderID, "order_confirmation.html", map[string]interface{}{
		"Store":     storeName,
		"OrderID":   event.OrderID,
		"Status":    event.Status,
		"ItemCount": event.ItemCount,
		"Total":     event.Total.StringFixed(2),
	})
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, tmpl string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.From, to, subject, body.String(),
	)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.sendMail(addr, auth, m.cfg.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	log.Printf("Sent %s to %s", tmpl, to)
	return nil
}

// LogMailer stands in for SMTPMailer when email is not configured. It logs
// what would have been sent and reports ErrDisabled.
type LogMailer struct{}

func (LogMailer) SendWelcome(_ context.Context, email string) error {
	log.Printf("Email disabled, skipping welcome email to %s", email)
	return ErrDisabled
}

func (LogMailer) SendOrderConfirmation(_ context.Context, event models.OrderEvent) error {
	log.Printf("Email disabled, skipping confirmation for order %s", event.OrderID)
	return ErrDisabled
}
