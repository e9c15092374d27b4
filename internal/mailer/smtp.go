package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTP delivers messages through an SMTP relay.
type SMTP struct {
	From   string
	client *mail.Client
}

// NewSMTP creates an SMTP mailer. Username and password may be empty
// for unauthenticated relays.
func NewSMTP(host string, port int, username, password, from string) (*SMTP, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTP{From: from, client: client}, nil
}

// Send delivers one message. An empty recipient list is a silent no-op.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	m := mail.NewMsg()
	if err := m.From(s.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("setting recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}
