package resend

import (
	"context"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"

	"github.com/entoun8/alshami-store/pkg/notification/domain/model"
)

type Sender struct {
	client *resend.Client
	from   string
}

func NewSender(apiKey, from string) *Sender {
	return &Sender{client: resend.NewClient(apiKey), from: from}
}

var _ model.NotificationSender = &Sender{}

func (s *Sender) Send(ctx context.Context, recipient, subject, body, dedupeKey string) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{recipient},
		Subject: subject,
		Html:    body,
		Headers: map[string]string{"Idempotency-Key": dedupeKey},
	})
	return errors.Wrap(err, "send email")
}
