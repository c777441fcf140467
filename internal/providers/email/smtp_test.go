package email

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPProviderBuildsMultipartMessage(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotBody string
	)
	p := NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: 587, From: Sender("Voltshop", "orders@example.com")})
	p.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, string(msg)
		return nil
	}

	id, err := p.Send(context.Background(), Message{
		To:          []string{"ada@example.com"},
		Subject:     "Order #1001 confirmed",
		HTML:        "<p>Thanks</p>",
		Text:        "Thanks",
		Attachments: []Attachment{{Filename: "receipt-1001.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "orders@example.com", gotFrom)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, gotBody, "From: Voltshop <orders@example.com>")
	assert.Contains(t, gotBody, "multipart/mixed")
	assert.Contains(t, gotBody, "multipart/alternative")
	assert.Contains(t, gotBody, `filename=receipt-1001.pdf`)
	assert.True(t, strings.Contains(gotBody, "text/html; charset=utf-8"))
}

func TestSMTPProviderWrapsTransportErrors(t *testing.T) {
	p := NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: 25, From: "orders@example.com"})
	p.send = func(string, smtp.Auth, string, []string, []byte) error {
		return assert.AnError
	}

	_, err := p.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", HTML: "<p>x</p>"})
	assert.ErrorIs(t, err, ErrSendFailed)
}

func TestMessageValidate(t *testing.T) {
	assert.ErrorIs(t, Message{Subject: "s", HTML: "h"}.Validate(), ErrNoRecipients)
	assert.ErrorIs(t, Message{To: []string{" "}, Subject: "s", HTML: "h"}.Validate(), ErrNoRecipients)
	assert.ErrorIs(t, Message{To: []string{"a@b.c"}, HTML: "h"}.Validate(), ErrEmptyMessage)
	assert.NoError(t, Message{To: []string{"a@b.c"}, Subject: "s", HTML: "h"}.Validate())
}

func TestEnvelopeAddress(t *testing.T) {
	assert.Equal(t, "orders@example.com", envelopeAddress("Voltshop <orders@example.com>"))
	assert.Equal(t, "orders@example.com", envelopeAddress(" orders@example.com "))
	assert.Equal(t, "orders@example.com", Sender("", "orders@example.com"))
}
