package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/internal/campaign/domain"
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/config"
	customerdomain "github.com/smallbiznis/voltshop/internal/customer/domain"
	"github.com/smallbiznis/voltshop/internal/events"
	obsmetrics "github.com/smallbiznis/voltshop/internal/observability/metrics"
	"github.com/smallbiznis/voltshop/internal/providers/email"
	"github.com/smallbiznis/voltshop/pkg/db/option"
	"github.com/smallbiznis/voltshop/pkg/db/pagination"
	"github.com/smallbiznis/voltshop/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Email       email.Provider
	Customers   customerdomain.Service
	Publisher   events.Publisher               `optional:"true"`
	Settings    *config.StoreSettingsHolder    `optional:"true"`
	Clock       clock.Clock                    `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics            `optional:"true"`
	Fulfillment *obsmetrics.FulfillmentMetrics `optional:"true"`
}

type Service struct {
	log         *zap.Logger
	genID       *snowflake.Node
	logs        repository.Repository[domain.CampaignLog]
	email       email.Provider
	customers   customerdomain.Service
	publisher   events.Publisher
	settings    *config.StoreSettingsHolder
	clock       clock.Clock
	obsMetrics  *obsmetrics.Metrics
	fulfillment *obsmetrics.FulfillmentMetrics
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	pub := p.Publisher
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Service{
		log:         p.Log.Named("campaign.service"),
		genID:       p.GenID,
		logs:        repository.ProvideStore[domain.CampaignLog](p.DB),
		email:       p.Email,
		customers:   p.Customers,
		publisher:   pub,
		settings:    p.Settings,
		clock:       c,
		obsMetrics:  p.ObsMetrics,
		fulfillment: p.Fulfillment,
	}
}

func (s *Service) Send(ctx context.Context, req domain.SendRequest) (domain.SendResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.SendResult{}, domain.ErrInvalidName
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return domain.SendResult{}, domain.ErrInvalidSubject
	}
	if strings.TrimSpace(req.BodyHTML) == "" {
		return domain.SendResult{}, domain.ErrInvalidBody
	}
	text := req.BodyText
	if strings.TrimSpace(text) == "" {
		text = email.PlainText(req.BodyHTML)
	}

	recipients, audience, err := s.resolveRecipients(ctx, req)
	if err != nil {
		return domain.SendResult{}, err
	}
	if len(recipients) == 0 {
		return domain.SendResult{}, domain.ErrNoRecipients
	}

	// Once recipients are resolved the campaign runs to completion.
	ctx = context.WithoutCancel(ctx)

	settings := s.settings.Get()
	start := s.clock.Now()
	entry := domain.CampaignLog{
		ID:             s.genID.Generate(),
		Name:           name,
		Subject:        subject,
		BodyHTML:       req.BodyHTML,
		BodyText:       text,
		Audience:       audience,
		TestMode:       req.TestMode,
		RecipientCount: len(recipients),
		Status:         domain.StatusSending,
		CreatedAt:      start.UTC(),
	}
	if audience == domain.AudienceSelected {
		raw, err := json.Marshal(recipients)
		if err != nil {
			return domain.SendResult{}, err
		}
		entry.SelectedRecipients = datatypes.JSON(raw)
	}
	if err := s.logs.Create(ctx, &entry); err != nil {
		return domain.SendResult{}, err
	}

	log := s.log.With(
		zap.String("campaign_id", entry.ID.String()),
		zap.String("audience", audience),
		zap.Int("recipient_count", len(recipients)),
	)
	log.Info("campaign send started")

	result := domain.SendResult{
		CampaignID:     entry.ID.String(),
		RecipientCount: len(recipients),
	}
	for _, to := range recipients {
		_, err := s.email.Send(ctx, email.Message{
			To:      []string{to},
			Subject: subject,
			HTML:    req.BodyHTML,
			Text:    text,
			Tags: map[string]string{
				"kind":        "campaign",
				"campaign_id": entry.ID.String(),
			},
		})
		if err != nil {
			result.FailedCount++
			if len(result.Errors) < settings.CampaignErrorSample {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", to, err))
			}
			s.obsMetrics.RecordCampaignRecipient(ctx, audience, "failed")
			log.Warn("campaign email failed", zap.String("recipient", to), zap.Error(err))
		} else {
			result.SentCount++
			s.obsMetrics.RecordCampaignRecipient(ctx, audience, "sent")
		}
		if err := s.clock.Sleep(ctx, settings.CampaignSendDelay); err != nil {
			log.Warn("campaign throttle interrupted", zap.Error(err))
		}
	}

	completedAt := s.clock.Now().UTC()
	update := map[string]any{
		"sent_count":   result.SentCount,
		"failed_count": result.FailedCount,
		"status":       domain.StatusCompleted,
		"completed_at": completedAt,
	}
	if len(result.Errors) > 0 {
		if raw, err := json.Marshal(result.Errors); err == nil {
			update["errors"] = datatypes.JSON(raw)
		}
	}
	if err := s.logs.Update(ctx, entry.ID, update); err != nil {
		log.Error("failed to complete campaign log", zap.Error(err))
	}

	s.fulfillment.ObserveCampaign(audience, req.TestMode, completedAt.Sub(start))
	evt := events.New(ctx, events.TypeCampaignCompleted, entry.ID.String(), result)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		log.Warn("failed to publish campaign event", zap.Error(err))
	}

	log.Info("campaign send completed",
		zap.Int("sent_count", result.SentCount),
		zap.Int("failed_count", result.FailedCount),
	)
	return result, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}.Normalize()
	items, err := s.logs.Find(ctx, &domain.CampaignLog{},
		option.ApplyPagination(page),
		option.WithOrder("created_at desc, id desc"),
	)
	if err != nil {
		return domain.ListResponse{}, err
	}

	logs := make([]domain.CampaignLog, 0, len(items))
	for _, item := range items {
		logs = append(logs, *item)
	}
	logs, pageInfo := pagination.Trim(logs, page.PageSize, func(l domain.CampaignLog) string {
		return pagination.CursorFor(l.ID.String(), l.CreatedAt)
	})
	return domain.ListResponse{PageInfo: pageInfo, Campaigns: logs}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.CampaignLog, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.CampaignLog{}, domain.ErrInvalidID
	}
	item, err := s.logs.FindOne(ctx, &domain.CampaignLog{ID: parsed})
	if err != nil {
		return domain.CampaignLog{}, err
	}
	if item == nil {
		return domain.CampaignLog{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Latest(ctx context.Context) (*domain.CampaignLog, error) {
	items, err := s.logs.Find(ctx, &domain.CampaignLog{},
		option.WithOrder("created_at desc, id desc"),
		option.WithLimit(1),
	)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}
