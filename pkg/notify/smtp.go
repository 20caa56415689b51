package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers email through an SMTP relay.
type SMTPSender struct {
	dialer dialer
	from   string
}

// NewSMTPSender constructs an SMTP email sender.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, username, password), from: from}
}

// Send implements Sender. The SMTP session is not cancellable, so the call
// returns as soon as ctx is done and leaves the session to finish on its own.
func (s *SMTPSender) Send(ctx context.Context, recipient string, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", recipient, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", recipient, err)
		}
		return nil
	}
}
