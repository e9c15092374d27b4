// Package mailer sends outbound notification email. Sending is always
// best-effort: callers log failures and carry on, they never roll back
// the business operation that triggered the mail.
package mailer

import (
	"context"
	"log/slog"
)

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Log is a Mailer that only logs. Used when no SMTP transport is
// configured, so that development setups work without a mail server.
type Log struct{}

// Send logs the message instead of delivering it.
func (Log) Send(_ context.Context, msg Message) error {
	slog.Info("mail not configured, skipping send", "to", msg.To, "subject", msg.Subject)
	return nil
}
