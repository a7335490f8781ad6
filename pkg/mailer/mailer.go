// Package mailer sends the sales-lead notification mail over SMTP with
// STARTTLS. It is deliberately tiny: one message shape, one recipient list.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/electromart/agenthub/agent/contract"
)

type Config struct {
	Host     string        `envconfig:"HOST" split_words:"true"`
	Port     int           `envconfig:"PORT" split_words:"true" default:"587"`
	Username string        `envconfig:"USERNAME" split_words:"true"`
	Password string        `envconfig:"PASSWORD" split_words:"true"`
	From     string        `envconfig:"FROM" split_words:"true"`
	To       []string      `envconfig:"TO" split_words:"true"`
	Timeout  time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Host) != "" && len(c.To) > 0
}

// Mailer implements contract.Notifier over plain SMTP.
type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) NotifyLead(ctx context.Context, lead contract.Lead, receipt contract.LeadReceipt) error {
	if !m.cfg.Enabled() {
		return nil
	}

	msg := m.buildMessage(lead, receipt)
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", m.cfg.Port))

	done := make(chan error, 1)
	go func() { done <- m.send(addr, msg) }()

	timer := time.NewTimer(m.cfg.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("mailer: send to %s timed out", addr)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mailer) send(addr string, msg []byte) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", addr, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("mailer: starttls: %w", err)
		}
	}
	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("mailer: auth: %w", err)
		}
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("mailer: mail from: %w", err)
	}
	for _, rcpt := range m.cfg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mailer: rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("mailer: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: close body: %w", err)
	}
	return c.Quit()
}

func (m *Mailer) buildMessage(lead contract.Lead, receipt contract.LeadReceipt) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: New sales lead: %s\r\n", lead.Interest)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "A new purchase lead was captured.\r\n\r\n")
	fmt.Fprintf(&b, "Lead ID:  %d\r\n", receipt.LeadID)
	fmt.Fprintf(&b, "Customer: %s\r\n", lead.Name)
	fmt.Fprintf(&b, "Phone:    %s\r\n", lead.Phone)
	fmt.Fprintf(&b, "Product:  %s\r\n", lead.Interest)
	if lead.Notes != "" {
		fmt.Fprintf(&b, "Notes:    %s\r\n", lead.Notes)
	}
	return []byte(b.String())
}
