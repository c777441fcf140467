package email

import (
	"context"
	"errors"
	"strings"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outbound email. HTML is required; Text is the plain-text alternative.
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Text        string
	ReplyTo     string
	Attachments []Attachment
	Tags        map[string]string
}

// Provider delivers a message and returns the provider's message id.
type Provider interface {
	Send(ctx context.Context, msg Message) (string, error)
}

var (
	ErrNoRecipients = errors.New("email_no_recipients")
	ErrEmptyMessage = errors.New("email_empty_message")
	ErrSendFailed   = errors.New("email_send_failed")
)

func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" {
			return ErrNoRecipients
		}
	}
	if strings.TrimSpace(m.Subject) == "" || strings.TrimSpace(m.HTML) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Sender formats the From header, e.g. "Voltshop <orders@voltshop.local>".
func Sender(name, address string) string {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" {
		return address
	}
	return name + " <" + address + ">"
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	return "noop", nil
}
