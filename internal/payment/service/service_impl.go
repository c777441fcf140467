package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/smallbiznis/voltshop/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const providerStripe = "stripe"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Gateway    paymentdomain.Gateway
	Ingestor   paymentdomain.SessionIngestor
	Repo       paymentdomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	gateway    paymentdomain.Gateway
	ingestor   paymentdomain.SessionIngestor
	repo       paymentdomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.webhook"),
		genID:      p.GenID,
		gateway:    p.Gateway,
		ingestor:   p.Ingestor,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

// IngestWebhook authenticates a Stripe delivery and hands paid checkout sessions to
// order ingestion. Nothing is read or written before the signature verifies.
func (s *Service) IngestWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.ParseEvent(payload, signatureHeader)
	if err != nil {
		s.obsMetrics.RecordWebhookEvent(ctx, providerStripe, "unknown", "rejected")
		if errors.Is(err, paymentdomain.ErrInvalidSignature) {
			s.log.Warn("webhook signature verification failed")
		}
		return err
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	if !event.Handled() {
		s.obsMetrics.RecordWebhookEvent(ctx, providerStripe, event.Type, "ignored")
		s.log.Debug("webhook event ignored", zap.String("event_id", event.ID), zap.String("event_type", event.Type))
		return nil
	}
	if event.SessionID == "" {
		return paymentdomain.ErrInvalidEvent
	}

	now := time.Now().UTC()
	received := paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        providerStripe,
		ProviderEventID: event.ID,
		EventType:       event.Type,
		SessionID:       event.SessionID,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &received)
	if err != nil {
		return err
	}
	stored := &received
	if !inserted {
		stored, err = s.repo.FindEvent(ctx, s.db, providerStripe, event.ID)
		if err != nil {
			return err
		}
		if stored == nil {
			return paymentdomain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			s.obsMetrics.RecordWebhookEvent(ctx, providerStripe, event.Type, "duplicate")
			return paymentdomain.ErrEventAlreadyProcessed
		}
	}

	if err := s.ingestor.IngestCheckoutSession(ctx, event.SessionID); err != nil {
		if errors.Is(err, paymentdomain.ErrSessionRejected) {
			// processed_at stays null so the event can be found and replayed by hand.
			s.obsMetrics.RecordWebhookEvent(ctx, providerStripe, event.Type, "rejected")
			s.log.Error("checkout session cannot become an order",
				zap.String("event_id", event.ID),
				zap.String("session_id", event.SessionID),
				zap.Error(err),
			)
			return err
		}
		s.obsMetrics.RecordWebhookEvent(ctx, providerStripe, event.Type, "failed")
		s.log.Error("checkout session ingestion failed",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
		return err
	}

	if err := s.repo.MarkProcessed(ctx, s.db, stored.ID, time.Now().UTC()); err != nil {
		return err
	}

	s.obsMetrics.RecordWebhookEvent(ctx, providerStripe, event.Type, "processed")
	return nil
}
