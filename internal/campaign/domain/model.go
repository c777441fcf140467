package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusSending   Status = "sending"
	StatusCompleted Status = "completed"
)

// Audience labels recorded on a log when recipients did not come from a segment.
const (
	AudienceTest     = "test"
	AudienceSelected = "selected"
)

// CampaignLog records one bulk send. RecipientCount is fixed before the first
// email goes out; once completed, SentCount + FailedCount == RecipientCount.
// Audience holds the segment, or test/selected when no segment applied.
type CampaignLog struct {
	ID                 snowflake.ID   `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"type:text;not null" json:"name"`
	Subject            string         `gorm:"type:text;not null" json:"subject"`
	BodyHTML           string         `gorm:"type:text;not null" json:"body_html"`
	BodyText           string         `gorm:"type:text;not null" json:"body_text"`
	Audience           string         `gorm:"type:text;not null" json:"audience"`
	TestMode           bool           `gorm:"not null" json:"test_mode"`
	SelectedRecipients datatypes.JSON `gorm:"type:jsonb" json:"selected_recipients,omitempty"`
	RecipientCount     int            `gorm:"not null" json:"recipient_count"`
	SentCount          int            `gorm:"not null" json:"sent_count"`
	FailedCount        int            `gorm:"not null" json:"failed_count"`
	Status             Status         `gorm:"type:text;not null" json:"status"`
	Errors             datatypes.JSON `gorm:"type:jsonb" json:"errors,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;index" json:"created_at"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
}

func (CampaignLog) TableName() string { return "campaign_logs" }
