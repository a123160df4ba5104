// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email renders and delivers account notifications.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/i18n"
	"github.com/accountd/accountd/internal/models"
)

// Message is a rendered plain-text mail.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Service renders localized activation and reset mails and hands them to
// a Transport.
type Service struct {
	transport Transport
	linkBase  string
}

// NewService creates a Service. Links are built as
// <linkBase>/activation/<token> and <linkBase>/reset-pwd/<token>.
func NewService(transport Transport, linkBase string) (*Service, error) {
	if transport == nil {
		return nil, errors.New("mail transport is required")
	}
	return &Service{
		transport: transport,
		linkBase:  strings.TrimSuffix(linkBase, "/"),
	}, nil
}

// NewFromConfig builds the transport selected by cfg.Transport.
func NewFromConfig(ctx context.Context, cfg *config.MailConfig) (*Service, error) {
	var (
		t   Transport
		err error
	)
	switch cfg.Transport {
	case "smtp":
		t, err = NewSMTPTransport(&cfg.SMTP, cfg.From, cfg.FromName)
	case "ses":
		t, err = NewSESTransport(ctx, &cfg.SES, cfg.From, cfg.FromName)
	case "log", "":
		t = LogTransport{}
	default:
		err = fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
	if err != nil {
		return nil, err
	}
	return NewService(t, cfg.LinkBaseURL)
}

// SendActivationEmail sends the account activation link.
func (s *Service) SendActivationEmail(ctx context.Context, acc *models.Account, token string) error {
	return s.send(ctx, acc, "activation_email", s.link("activation", token))
}

// SendResetEmail sends the password reset link.
func (s *Service) SendResetEmail(ctx context.Context, acc *models.Account, token string) error {
	return s.send(ctx, acc, "reset_email", s.link("reset-pwd", token))
}

func (s *Service) link(path, token string) string {
	return fmt.Sprintf("%s/%s/%s", s.linkBase, path, url.PathEscape(token))
}

func (s *Service) send(ctx context.Context, acc *models.Account, kind, link string) error {
	name := strings.TrimSpace(acc.FirstName + " " + acc.LastName)
	greeting := acc.FirstName
	if greeting == "" {
		greeting = acc.Email
	}
	msg := Message{
		To:      acc.Email,
		ToName:  name,
		Subject: i18n.T(ctx, kind+"_subject"),
		Body: i18n.TData(ctx, kind+"_body", map[string]any{
			"Name": greeting,
			"Link": link,
		}),
	}
	if err := s.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending %s: %w", kind, err)
	}
	return nil
}
