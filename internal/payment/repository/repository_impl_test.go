package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/voltshop/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.EventRecord{}))
	return db
}

func TestInsertEventIsIdempotentPerProviderEvent(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	r := Provide()

	received := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := &domain.EventRecord{
		ID:              1,
		Provider:        "stripe",
		ProviderEventID: "evt_123",
		EventType:       "checkout.session.completed",
		SessionID:       "cs_test_1",
		Payload:         datatypes.JSON(`{"id":"evt_123"}`),
		ReceivedAt:      received,
	}
	inserted, err := r.InsertEvent(ctx, db, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	dup := *first
	dup.ID = 2
	inserted, err = r.InsertEvent(ctx, db, &dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	stored, err := r.FindEvent(ctx, db, "stripe", "evt_123")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.EqualValues(t, 1, stored.ID)
	assert.Nil(t, stored.ProcessedAt)

	missing, err := r.FindEvent(ctx, db, "stripe", "evt_404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMarkProcessedKeepsFirstTimestamp(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	r := Provide()

	_, err := r.InsertEvent(ctx, db, &domain.EventRecord{
		ID:              7,
		Provider:        "stripe",
		ProviderEventID: "evt_7",
		EventType:       "checkout.session.completed",
		Payload:         datatypes.JSON(`{}`),
		ReceivedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)

	firstAt := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	require.NoError(t, r.MarkProcessed(ctx, db, 7, firstAt))
	require.NoError(t, r.MarkProcessed(ctx, db, 7, firstAt.Add(time.Hour)))

	stored, err := r.FindEvent(ctx, db, "stripe", "evt_7")
	require.NoError(t, err)
	require.NotNil(t, stored.ProcessedAt)
	assert.True(t, firstAt.Equal(*stored.ProcessedAt))
}
