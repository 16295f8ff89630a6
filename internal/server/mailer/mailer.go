// Package mailer delivers one-time sign-in codes by email.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/wneessen/go-mail"
)

// Mailer sends a one-time code to an address.
type Mailer interface {
	SendCode(ctx context.Context, to, code string, validity time.Duration) error
}

// SMTPMailer sends plain-text messages through an SMTP relay.
type SMTPMailer struct {
	from   string
	client *mail.Client
	// send is replaced in tests.
	send func(ctx context.Context, msgs ...*mail.Msg) error
}

// NewSMTPMailer builds a mailer from the SMTP settings in cfg. Port 465 uses
// implicit TLS; any other port tries STARTTLS first.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []mail.Option{mail.WithTimeout(15 * time.Second)}
	if cfg.SMTPPort == 465 {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic), mail.WithPort(cfg.SMTPPort))
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}

	m := &SMTPMailer{from: from, client: client}
	m.send = client.DialAndSendWithContext
	return m, nil
}

func (m *SMTPMailer) SendCode(ctx context.Context, to, code string, validity time.Duration) error {
	msg, err := m.message(to, code, validity)
	if err != nil {
		return err
	}
	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) message(to, code string, validity time.Duration) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject("Your sign-in code")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your sign-in code is %s.\n\nIt expires in %d minutes. If you did not request it, ignore this email.\n",
		code, int(validity.Minutes())))
	return msg, nil
}
