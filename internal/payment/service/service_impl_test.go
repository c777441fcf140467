package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	"github.com/smallbiznis/voltshop/internal/payment/paymenttest"
	"github.com/smallbiznis/voltshop/internal/payment/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq int64

type fakeIngestor struct {
	calls []string
	err   error
}

func (f *fakeIngestor) IngestCheckoutSession(ctx context.Context, sessionID string) error {
	f.calls = append(f.calls, sessionID)
	return f.err
}

func setup(t *testing.T) (*Service, *gorm.DB, *paymenttest.Gateway, *fakeIngestor) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Exec(`CREATE TABLE payment_events (
		id INTEGER PRIMARY KEY,
		provider TEXT NOT NULL,
		provider_event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		session_id TEXT,
		payload TEXT NOT NULL,
		received_at DATETIME NOT NULL,
		processed_at DATETIME,
		UNIQUE (provider, provider_event_id)
	)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	gateway := paymenttest.NewGateway()
	ingestor := &fakeIngestor{}
	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Gateway:  gateway,
		Ingestor: ingestor,
		Repo:     repository.Provide(),
	}).(*Service)
	return svc, db, gateway, ingestor
}

func TestIngestWebhookRejectsBadSignatureWithoutSideEffects(t *testing.T) {
	svc, db, _, ingestor := setup(t)

	err := svc.IngestWebhook(context.Background(), []byte(`{"id":"evt_1"}`), "forged")
	if !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
	if len(ingestor.calls) != 0 {
		t.Fatalf("expected no ingestion on bad signature")
	}
	assertCount(t, db, "payment_events", 0)
}

func TestIngestWebhookIgnoresUnhandledTypes(t *testing.T) {
	svc, db, gateway, ingestor := setup(t)
	gateway.Events["sig"] = paymentdomain.Event{ID: "evt_1", Type: "charge.refunded"}

	if err := svc.IngestWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("expected ignored event to succeed, got %v", err)
	}
	if len(ingestor.calls) != 0 {
		t.Fatalf("expected no ingestion")
	}
	assertCount(t, db, "payment_events", 0)
}

func TestIngestWebhookDeduplicatesProcessedEvents(t *testing.T) {
	svc, db, gateway, ingestor := setup(t)
	gateway.Events["sig"] = paymentdomain.Event{ID: "evt_1", Type: paymentdomain.EventCheckoutSessionCompleted, SessionID: "cs_1"}

	if err := svc.IngestWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	err := svc.IngestWebhook(context.Background(), []byte(`{}`), "sig")
	if !errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}
	if len(ingestor.calls) != 1 {
		t.Fatalf("expected one ingestion, got %d", len(ingestor.calls))
	}
	assertCount(t, db, "payment_events", 1)
}

func TestIngestWebhookRetriesAfterFailure(t *testing.T) {
	svc, db, gateway, ingestor := setup(t)
	gateway.Events["sig"] = paymentdomain.Event{ID: "evt_1", Type: paymentdomain.EventCheckoutAsyncPaymentSucceeded, SessionID: "cs_1"}
	ingestor.err = errors.New("db down")

	if err := svc.IngestWebhook(context.Background(), []byte(`{}`), "sig"); err == nil {
		t.Fatalf("expected failure to propagate")
	}

	ingestor.err = nil
	if err := svc.IngestWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(ingestor.calls) != 2 {
		t.Fatalf("expected two ingestion attempts, got %d", len(ingestor.calls))
	}

	var processed int64
	db.Raw(`SELECT COUNT(*) FROM payment_events WHERE processed_at IS NOT NULL`).Scan(&processed)
	if processed != 1 {
		t.Fatalf("expected event marked processed")
	}
}

func assertCount(t *testing.T, db *gorm.DB, table string, want int64) {
	t.Helper()
	var got int64
	if err := db.Raw(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&got).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	if got != want {
		t.Fatalf("expected %d rows in %s, got %d", want, table, got)
	}
}

func TestIngestWebhookRejectedSessionStaysUnprocessed(t *testing.T) {
	svc, db, gateway, ingestor := setup(t)
	gateway.Events["sig"] = paymentdomain.Event{ID: "evt_1", Type: paymentdomain.EventCheckoutSessionCompleted, SessionID: "cs_1"}
	ingestor.err = fmt.Errorf("%w: no_line_items", paymentdomain.ErrSessionRejected)

	err := svc.IngestWebhook(context.Background(), []byte(`{}`), "sig")
	if !errors.Is(err, paymentdomain.ErrSessionRejected) {
		t.Fatalf("expected rejected session, got %v", err)
	}
	assertCount(t, db, "payment_events", 1)

	var processed int64
	db.Raw(`SELECT COUNT(*) FROM payment_events WHERE processed_at IS NOT NULL`).Scan(&processed)
	if processed != 0 {
		t.Fatalf("expected rejected event to stay unprocessed")
	}
}
