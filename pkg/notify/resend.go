package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	emails resendEmails
	from   string
}

// NewResendSender constructs a Resend email sender.
func NewResendSender(apiKey, from string) *ResendSender {
	client := resend.NewClient(apiKey)
	return &ResendSender{emails: client.Emails, from: from}
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, recipient string, msg Message) error {
	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{recipient},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := s.emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend send to %s: %w", recipient, err)
	}
	return nil
}
