// Package emailtest provides a recording email provider for tests.
package emailtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallbiznis/voltshop/internal/providers/email"
)

// Provider records every message. Recipients listed in FailFor are rejected.
type Provider struct {
	mu sync.Mutex

	Sent    []email.Message
	FailFor map[string]error
	Err     error
}

func New() *Provider {
	return &Provider{FailFor: map[string]error{}}
}

func (p *Provider) Send(ctx context.Context, msg email.Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := msg.Validate(); err != nil {
		return "", err
	}
	if p.Err != nil {
		return "", p.Err
	}
	for _, to := range msg.To {
		if err, ok := p.FailFor[to]; ok {
			return "", err
		}
	}
	p.Sent = append(p.Sent, msg)
	return fmt.Sprintf("msg_%d", len(p.Sent)), nil
}

func (p *Provider) Messages() []email.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]email.Message(nil), p.Sent...)
}

// SentTo returns the messages addressed to one recipient.
func (p *Provider) SentTo(addr string) []email.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []email.Message
	for _, msg := range p.Sent {
		for _, to := range msg.To {
			if to == addr {
				out = append(out, msg)
				break
			}
		}
	}
	return out
}
