// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package mailer delivers confirmation links via SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/digitalnomads/internal/config"
	"codeberg.org/oliverandrich/digitalnomads/internal/i18n"
	"github.com/wneessen/go-mail"
)

// smtpTimeout bounds the SMTP connect and send operations.
const smtpTimeout = 10 * time.Second

// Notifier sends a confirmation link to an email address. Delivery errors
// never roll back the account-state change that triggered the send; the
// caller logs them and moves on.
type Notifier interface {
	SendConfirmation(ctx context.Context, toEmail, confirmURL string) error
}

// SMTP is the go-mail backed Notifier.
type SMTP struct {
	cfg *config.MailConfig
}

// NewSMTP validates the transport settings and returns an SMTP notifier.
func NewSMTP(cfg *config.MailConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &SMTP{cfg: cfg}, nil
}

// SendConfirmation sends the confirmation link in a plain-text mail.
func (s *SMTP) SendConfirmation(ctx context.Context, toEmail, confirmURL string) error {
	subject := i18n.T(ctx, "email_confirmation_subject")
	body := i18n.TData(ctx, "email_confirmation_body", map[string]any{
		"ConfirmURL": confirmURL,
	})

	return s.send(ctx, toEmail, subject, body)
}

func (s *SMTP) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(smtpTimeout),
	}

	// STARTTLS by default, implicit TLS (SSL) on port 465
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// LogOnly is a Notifier for development setups without an SMTP server.
// It logs the confirmation link instead of delivering it.
type LogOnly struct{}

// NewLogOnly returns the logging notifier.
func NewLogOnly() *LogOnly {
	return &LogOnly{}
}

// SendConfirmation logs the link at info level.
func (l *LogOnly) SendConfirmation(ctx context.Context, toEmail, confirmURL string) error {
	slog.InfoContext(ctx, "confirmation link (mail transport not configured)",
		"email", toEmail,
		"url", confirmURL,
	)
	return nil
}
