package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/voltshop/internal/campaign/domain"
	customerdomain "github.com/smallbiznis/voltshop/internal/customer/domain"
)

// resolveRecipients returns the ordered recipient list and the audience label.
func (s *Service) resolveRecipients(ctx context.Context, req domain.SendRequest) ([]string, string, error) {
	if req.TestMode {
		to := customerdomain.NormalizeEmail(req.TestEmail)
		if !customerdomain.ValidEmail(to) {
			return nil, "", domain.ErrInvalidTestEmail
		}
		return []string{to}, domain.AudienceTest, nil
	}

	if len(req.SelectedEmails) > 0 {
		seen := make(map[string]struct{}, len(req.SelectedEmails))
		out := make([]string, 0, len(req.SelectedEmails))
		for _, raw := range req.SelectedEmails {
			to := customerdomain.NormalizeEmail(raw)
			if to == "" {
				continue
			}
			if !customerdomain.ValidEmail(to) {
				return nil, "", fmt.Errorf("%w: %s", domain.ErrInvalidRecipient, raw)
			}
			if _, ok := seen[to]; ok {
				continue
			}
			seen[to] = struct{}{}
			out = append(out, to)
		}
		return out, domain.AudienceSelected, nil
	}

	segment, err := customerdomain.ParseSegment(req.Segment)
	if err != nil {
		return nil, "", err
	}
	emails, err := s.customers.ResolveSegment(ctx, segment)
	if err != nil {
		return nil, "", err
	}
	return emails, string(segment), nil
}
