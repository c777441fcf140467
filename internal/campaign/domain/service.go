package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/voltshop/pkg/db/pagination"
)

type SendRequest struct {
	Name     string
	Subject  string
	BodyHTML string
	// BodyText is derived from BodyHTML when empty.
	BodyText string

	TestMode  bool
	TestEmail string
	// Segment is all, has_orders or no_orders. Ignored when SelectedEmails is set.
	Segment        string
	SelectedEmails []string
}

type SendResult struct {
	CampaignID     string   `json:"campaign_id"`
	RecipientCount int      `json:"recipient_count"`
	SentCount      int      `json:"sent_count"`
	FailedCount    int      `json:"failed_count"`
	Errors         []string `json:"errors,omitempty"`
}

type ListRequest struct {
	PageToken string
	PageSize  int
}

type ListResponse struct {
	pagination.PageInfo
	Campaigns []CampaignLog `json:"campaigns"`
}

type Service interface {
	// Send delivers one email per recipient, sequentially and throttled. It runs
	// to completion even if ctx is cancelled mid-loop.
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Get(ctx context.Context, id string) (CampaignLog, error)
	// Latest returns nil when no campaign has been sent.
	Latest(ctx context.Context) (*CampaignLog, error)
}

var (
	ErrInvalidName      = errors.New("invalid_campaign_name")
	ErrInvalidSubject   = errors.New("invalid_subject")
	ErrInvalidBody      = errors.New("invalid_body")
	ErrInvalidTestEmail = errors.New("invalid_test_email")
	ErrInvalidRecipient = errors.New("invalid_recipient")
	ErrNoRecipients     = errors.New("no_recipients")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
)
