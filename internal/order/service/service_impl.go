package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/config"
	customerdomain "github.com/smallbiznis/voltshop/internal/customer/domain"
	"github.com/smallbiznis/voltshop/internal/events"
	obsmetrics "github.com/smallbiznis/voltshop/internal/observability/metrics"
	"github.com/smallbiznis/voltshop/internal/order/domain"
	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	"github.com/smallbiznis/voltshop/pkg/db"
	"github.com/smallbiznis/voltshop/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxOrderNumberAttempts = 5

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Gateway     paymentdomain.Gateway
	Notifier    domain.Notifier
	Customers   customerdomain.Service
	Publisher   events.Publisher               `optional:"true"`
	Settings    *config.StoreSettingsHolder    `optional:"true"`
	Clock       clock.Clock                    `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics            `optional:"true"`
	Fulfillment *obsmetrics.FulfillmentMetrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	gateway     paymentdomain.Gateway
	notifier    domain.Notifier
	customers   customerdomain.Service
	publisher   events.Publisher
	settings    *config.StoreSettingsHolder
	clock       clock.Clock
	obsMetrics  *obsmetrics.Metrics
	fulfillment *obsmetrics.FulfillmentMetrics

	// order ids with a confirmation send in flight
	confirming sync.Map
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
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		gateway:     p.Gateway,
		notifier:    p.Notifier,
		customers:   p.Customers,
		publisher:   pub,
		settings:    p.Settings,
		clock:       c,
		obsMetrics:  p.ObsMetrics,
		fulfillment: p.Fulfillment,
	}
}

// AsSessionIngestor exposes order ingestion to the payment webhook handler.
func AsSessionIngestor(svc domain.Service) paymentdomain.SessionIngestor {
	return svc
}

func (s *Service) IngestCheckoutSession(ctx context.Context, sessionID string) error {
	start := time.Now()
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.ErrInvalidSession
	}
	log := s.log.With(zap.String("stripe_session_id", sessionID))

	existing, err := s.repo.FindBySessionID(ctx, s.db, sessionID)
	if err != nil {
		s.fulfillment.IncIngestFailure(obsmetrics.StagePersist, err)
		return err
	}
	if existing != nil {
		if existing.ConfirmationSent() {
			log.Info("checkout session already ingested")
			s.fulfillment.ObserveIngest("duplicate", time.Since(start))
			return nil
		}
		// The order was stored but the confirmation never went out.
		s.confirm(ctx, *existing)
		s.fulfillment.ObserveIngest("resumed", time.Since(start))
		return nil
	}

	session, err := s.gateway.FetchSession(ctx, sessionID)
	if err != nil {
		s.fulfillment.IncIngestFailure(obsmetrics.StageFetch, err)
		return err
	}
	if !session.Paid() {
		log.Info("checkout session not paid yet, skipping", zap.String("payment_status", session.PaymentStatus))
		s.fulfillment.ObserveIngest("unpaid", time.Since(start))
		return nil
	}

	rec, err := domain.Reconcile(session.LineItems, session.AmountTotal, s.settings.Get().ShippingKeywords)
	if err != nil {
		s.fulfillment.IncIngestFailure(obsmetrics.StageReconcile, err)
		return fmt.Errorf("%w: %w", paymentdomain.ErrSessionRejected, err)
	}
	if !rec.Balanced() {
		log.Warn("provider line items do not add up to the captured total",
			zap.Int64("items_total", rec.ItemsTotal),
			zap.Int64("shipping_amount", rec.ShippingAmount),
			zap.Int64("total_amount", rec.TotalAmount),
		)
	}

	order := s.buildOrder(session, rec)
	if order.CustomerEmail == "" {
		s.fulfillment.IncIngestFailure(obsmetrics.StageReconcile, domain.ErrMissingCustomerEmail)
		return fmt.Errorf("%w: %w", paymentdomain.ErrSessionRejected, domain.ErrMissingCustomerEmail)
	}

	if _, err := s.customers.Upsert(ctx, customerdomain.UpsertRequest{
		Email:   order.CustomerEmail,
		Name:    order.CustomerName,
		Phone:   deref(order.CustomerPhone),
		Address: customerAddress(session.ShippingAddress),
	}); err != nil {
		log.Warn("failed to record customer snapshot", zap.Error(err))
	}

	stored, created, err := s.persist(ctx, order)
	if err != nil {
		s.fulfillment.IncIngestFailure(obsmetrics.StagePersist, err)
		return err
	}
	if !created {
		log.Info("concurrent delivery created the order first", zap.Int64("order_number", stored.OrderNumber))
		if stored.ConfirmationSent() {
			s.fulfillment.ObserveIngest("duplicate", time.Since(start))
			return nil
		}
	} else {
		s.obsMetrics.RecordOrderIngested(ctx, stored.Currency)
		s.publish(ctx, events.TypeOrderConfirmed, stored)
		log.Info("order created",
			zap.String("order_id", stored.ID.String()),
			zap.Int64("order_number", stored.OrderNumber),
			zap.Int64("total_amount", stored.TotalAmount),
		)
	}

	s.confirm(ctx, stored)
	s.fulfillment.ObserveIngest("created", time.Since(start))
	return nil
}

func (s *Service) buildOrder(session *paymentdomain.Session, rec domain.Reconciliation) domain.Order {
	now := s.clock.Now().UTC()
	orderID := s.genID.Generate()

	name := strings.TrimSpace(session.CustomerName)
	if name == "" {
		name = strings.TrimSpace(session.ShippingName)
	}

	order := domain.Order{
		ID:                orderID,
		StripeSessionID:   session.ID,
		PaymentIntentID:   domain.NullString(session.PaymentIntentID),
		CustomerEmail:     customerdomain.NormalizeEmail(session.CustomerEmail),
		CustomerName:      name,
		CustomerPhone:     domain.NullString(session.CustomerPhone),
		ShippingName:      domain.NullString(session.ShippingName),
		Currency:          strings.ToLower(session.Currency),
		SubtotalAmount:    rec.SubtotalAmount,
		ShippingAmount:    rec.ShippingAmount,
		TotalAmount:       rec.TotalAmount,
		PaymentStatus:     paymentStatus(session.PaymentStatus),
		Status:            domain.StatusConfirmed,
		FulfillmentStatus: domain.FulfillmentUnfulfilled,
		Metadata:          datatypes.JSONMap{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if addr := session.ShippingAddress; addr != nil {
		order.ShippingLine1 = domain.NullString(addr.Line1)
		order.ShippingLine2 = domain.NullString(addr.Line2)
		order.ShippingCity = domain.NullString(addr.City)
		order.ShippingState = domain.NullString(addr.State)
		order.ShippingPostalCode = domain.NullString(addr.PostalCode)
		order.ShippingCountry = domain.NullString(addr.Country)
	}

	if code := domain.NullString(session.Metadata[paymentdomain.MetadataDiscountCode]); code != nil {
		order.DiscountCode = code
		order.Metadata[paymentdomain.MetadataDiscountCode] = *code
	}
	if session.AmountDiscount > 0 {
		amount := session.AmountDiscount
		order.DiscountAmount = &amount
	} else if raw := session.Metadata[paymentdomain.MetadataDiscountAmount]; raw != "" {
		if amount, err := strconv.ParseInt(raw, 10, 64); err == nil && amount > 0 {
			order.DiscountAmount = &amount
		}
	}

	for i, item := range rec.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          s.genID.Generate(),
			OrderID:     orderID,
			Position:    i,
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			VariantID:   domain.NullString(item.VariantID),
			ProductSlug: domain.NullString(item.ProductSlug),
			CreatedAt:   now,
		})
	}
	return order
}

// persist inserts the order and its items in one transaction. The session id
// uniqueness makes a concurrent duplicate a no-op; an order number collision
// retries the whole transaction with the next number.
func (s *Service) persist(ctx context.Context, order domain.Order) (domain.Order, bool, error) {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		var inserted bool
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := s.repo.NextOrderNumber(ctx, tx)
			if err != nil {
				return err
			}
			order.OrderNumber = number

			inserted, err = s.repo.Insert(ctx, tx, &order)
			if err != nil {
				return err
			}
			if !inserted {
				return nil
			}
			return s.repo.InsertItems(ctx, tx, order.Items)
		})
		if err != nil {
			if db.IsDuplicateKeyErr(err) {
				s.log.Debug("order number collision, retrying", zap.Int("attempt", attempt))
				continue
			}
			return domain.Order{}, false, err
		}
		if inserted {
			return order, true, nil
		}

		winner, err := s.repo.FindBySessionID(ctx, s.db, order.StripeSessionID)
		if err != nil {
			return domain.Order{}, false, err
		}
		if winner == nil {
			return domain.Order{}, false, domain.ErrNotFound
		}
		if err := s.attachItems(ctx, winner); err != nil {
			return domain.Order{}, false, err
		}
		return *winner, false, nil
	}
	return domain.Order{}, false, domain.ErrOrderNumberExhausted
}

// confirm sends the confirmation and stamps it. Failures are logged and left
// for the pending-confirmation sweep; they never fail ingestion.
func (s *Service) confirm(ctx context.Context, order domain.Order) bool {
	log := s.log.With(
		zap.String("order_id", order.ID.String()),
		zap.Int64("order_number", order.OrderNumber),
	)
	if _, busy := s.confirming.LoadOrStore(order.ID, struct{}{}); busy {
		log.Debug("confirmation already in flight")
		return true
	}
	defer s.confirming.Delete(order.ID)

	// A concurrent delivery may have sent it since order was loaded.
	current, err := s.repo.FindByID(ctx, s.db, order.ID)
	if err != nil {
		log.Error("failed to reload order for confirmation", zap.Error(err))
		return false
	}
	if current != nil && current.ConfirmationSent() {
		return true
	}
	if len(order.Items) == 0 {
		if err := s.attachItems(ctx, &order); err != nil {
			log.Error("failed to load order items for confirmation", zap.Error(err))
			return false
		}
	}

	if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		s.fulfillment.IncIngestFailure(obsmetrics.StageNotify, err)
		log.Warn("order confirmation email failed", zap.Error(err))
		return false
	}

	stamped, err := s.repo.MarkConfirmationSent(ctx, s.db, order.ID, s.clock.Now().UTC())
	if err != nil {
		log.Error("failed to stamp confirmation email", zap.Error(err))
		return false
	}
	if !stamped {
		log.Info("confirmation already stamped by a concurrent delivery")
	}
	return true
}

func (s *Service) Dispatch(ctx context.Context, req domain.DispatchRequest) (domain.DispatchResult, error) {
	id, err := parseID(req.OrderID)
	if err != nil {
		return domain.DispatchResult{}, err
	}
	tracking := strings.TrimSpace(req.TrackingNumber)
	if tracking == "" || len(tracking) > 64 {
		return domain.DispatchResult{}, domain.ErrInvalidTrackingNumber
	}
	carrier := strings.TrimSpace(req.Carrier)
	if carrier == "" || len(carrier) > 64 {
		return domain.DispatchResult{}, domain.ErrInvalidCarrier
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return domain.DispatchResult{}, err
	}
	if order.FulfillmentStatus == domain.FulfillmentDelivered {
		return domain.DispatchResult{}, domain.ErrInvalidTransition
	}

	now := s.clock.Now().UTC()
	if err := s.repo.MarkShipped(ctx, s.db, order.ID, tracking, carrier, now); err != nil {
		return domain.DispatchResult{}, err
	}
	order.FulfillmentStatus = domain.FulfillmentShipped
	order.TrackingNumber = &tracking
	order.Carrier = &carrier
	order.ShippedAt = &now
	order.UpdatedAt = now
	s.publish(ctx, events.TypeOrderDispatched, order)

	result := domain.DispatchResult{Order: order}
	if err := s.notifier.SendDispatchNotice(ctx, order); err != nil {
		s.log.Warn("dispatch email failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		result.EmailError = err.Error()
		return result, nil
	}

	sentAt := s.clock.Now().UTC()
	if err := s.repo.MarkDispatchEmailSent(ctx, s.db, order.ID, sentAt); err != nil {
		s.log.Error("failed to stamp dispatch email", zap.String("order_id", order.ID.String()), zap.Error(err))
	} else {
		result.Order.DispatchEmailSentAt = &sentAt
	}
	result.EmailSent = true
	return result, nil
}

func (s *Service) Deliver(ctx context.Context, orderID string) (domain.Order, error) {
	id, err := parseID(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order.FulfillmentStatus != domain.FulfillmentShipped {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	now := s.clock.Now().UTC()
	ok, err := s.repo.MarkDelivered(ctx, s.db, order.ID, now)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, domain.ErrInvalidTransition
	}
	order.FulfillmentStatus = domain.FulfillmentDelivered
	order.DeliveredAt = &now
	order.UpdatedAt = now
	s.publish(ctx, events.TypeOrderDelivered, order)
	return order, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (domain.Order, error) {
	id, err := parseID(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return s.load(ctx, id)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		Email: customerdomain.NormalizeEmail(req.Email),
	}
	if status := strings.ToLower(strings.TrimSpace(req.FulfillmentStatus)); status != "" {
		switch domain.FulfillmentStatus(status) {
		case domain.FulfillmentUnfulfilled, domain.FulfillmentShipped, domain.FulfillmentDelivered:
			filter.FulfillmentStatus = domain.FulfillmentStatus(status)
		default:
			return domain.ListResponse{}, domain.ErrInvalidStatus
		}
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}.Normalize()
	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, page.PageSize, func(o domain.Order) string {
		return pagination.CursorFor(o.ID.String(), o.CreatedAt)
	})

	ids := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	lines, err := s.repo.ListItems(ctx, s.db, ids)
	if err != nil {
		return domain.ListResponse{}, err
	}
	for i := range items {
		items[i].Items = lines[items[i].ID]
	}
	return domain.ListResponse{PageInfo: pageInfo, Orders: items}, nil
}

func (s *Service) ResendPendingConfirmations(ctx context.Context, limit int) (domain.SweepResult, error) {
	if limit <= 0 {
		limit = s.settings.Get().ConfirmationSweepSize
	}
	pending, err := s.repo.ListPendingConfirmations(ctx, s.db, limit)
	if err != nil {
		return domain.SweepResult{}, err
	}

	var result domain.SweepResult
	for _, order := range pending {
		result.Attempted++
		if s.confirm(ctx, order) {
			result.Sent++
			s.fulfillment.IncSweep("sent")
		} else {
			result.Failed++
			s.fulfillment.IncSweep("failed")
		}
	}
	if result.Attempted > 0 {
		s.log.Info("pending confirmations swept",
			zap.Int("attempted", result.Attempted),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx, s.db)
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (domain.Order, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if item == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	if err := s.attachItems(ctx, item); err != nil {
		return domain.Order{}, err
	}
	return *item, nil
}

func (s *Service) attachItems(ctx context.Context, order *domain.Order) error {
	lines, err := s.repo.ListItems(ctx, s.db, []snowflake.ID{order.ID})
	if err != nil {
		return err
	}
	order.Items = lines[order.ID]
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, order domain.Order) {
	evt := events.New(ctx, eventType, strconv.FormatInt(order.OrderNumber, 10), order)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func customerAddress(addr *paymentdomain.Address) *customerdomain.Address {
	if addr == nil {
		return nil
	}
	return &customerdomain.Address{
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func paymentStatus(status string) domain.PaymentStatus {
	if status == paymentdomain.PaymentStatusNoPaymentRequired {
		return domain.PaymentStatusNoPaymentRequired
	}
	return domain.PaymentStatusPaid
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

