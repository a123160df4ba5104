// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/accountd/accountd/internal/config"
	"github.com/wneessen/go-mail"
)

// SMTPTransport delivers mail through an SMTP server using go-mail.
type SMTPTransport struct {
	cfg      *config.SMTPConfig
	from     string
	fromName string
}

// NewSMTPTransport creates an SMTPTransport.
func NewSMTPTransport(cfg *config.SMTPConfig, from, fromName string) (*SMTPTransport, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host is required")
	}
	if from == "" {
		return nil, errors.New("SMTP from address is required")
	}
	return &SMTPTransport{cfg: cfg, from: from, fromName: fromName}, nil
}

// Send implements Transport.
func (t *SMTPTransport) Send(ctx context.Context, m Message) error {
	msg, err := t.message(m)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(t.cfg.Host, t.options()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

func (t *SMTPTransport) message(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if t.fromName != "" {
		if err := msg.FromFormat(t.fromName, t.from); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(t.from); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if m.ToName != "" {
		if err := msg.AddToFormat(m.ToName, m.To); err != nil {
			return nil, fmt.Errorf("setting to address: %w", err)
		}
	} else if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return msg, nil
}

func (t *SMTPTransport) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
	}

	// Implicit TLS on 465, STARTTLS elsewhere
	if t.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if t.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if t.cfg.Username != "" && t.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}
	return opts
}
