// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"log/slog"
)

// LogTransport logs messages instead of delivering them.
type LogTransport struct{}

// Send implements Transport.
func (LogTransport) Send(ctx context.Context, m Message) error {
	slog.InfoContext(ctx, "mail_logged",
		"to", m.To,
		"subject", m.Subject,
		"body", m.Body,
	)
	return nil
}
