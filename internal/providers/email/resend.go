package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

type ResendConfig struct {
	APIKey  string
	From    string
	ReplyTo string
}

type ResendProvider struct {
	client  *resend.Client
	from    string
	replyTo string
}

func NewResend(cfg ResendConfig) *ResendProvider {
	return &ResendProvider{
		client:  resend.NewClient(cfg.APIKey),
		from:    cfg.From,
		replyTo: cfg.ReplyTo,
	}
}

func (p *ResendProvider) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	req := &resend.SendEmailRequest{
		From:    p.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: p.replyTo,
	}
	if msg.ReplyTo != "" {
		req.ReplyTo = msg.ReplyTo
	}
	for _, att := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename: att.Filename,
			Content:  att.Content,
		})
	}
	for name, value := range msg.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}

	sent, err := p.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: resend: %v", ErrSendFailed, err)
	}
	return sent.Id, nil
}
