package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/customer/domain"
	"github.com/smallbiznis/voltshop/internal/customer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq int64

func setupService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:customer_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))
	require.NoError(t, db.Exec(`CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		customer_email TEXT NOT NULL,
		total_amount INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	)`).Error)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)),
	})
	return svc, db
}

func insertOrder(t *testing.T, db *gorm.DB, id int64, email string, total int64, at time.Time) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO orders (id, customer_email, total_amount, created_at) VALUES (?, ?, ?, ?)`,
		id, email, total, at,
	).Error)
}

func TestUpsertNormalizesAndMerges(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, domain.UpsertRequest{
		Email: " Ada@Example.com ",
		Name:  "Ada Lovelace",
		Phone: "+15550100",
		Address: &domain.Address{
			Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "us",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.Equal(t, "US", first.Country)

	second, err := svc.Upsert(ctx, domain.UpsertRequest{Email: "ada@example.com", Name: ""})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ada Lovelace", second.Name, "blank name keeps the prior snapshot")
	assert.Equal(t, "1 Main St", second.AddressLine1)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svc.Upsert(ctx, domain.UpsertRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestSegmentsArePartitions(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	for _, email := range []string{"c@example.com", "a@example.com", "b@example.com", "d@example.com"} {
		_, err := svc.Upsert(ctx, domain.UpsertRequest{Email: email})
		require.NoError(t, err)
	}
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	insertOrder(t, db, 1, "a@example.com", 2399, now)
	insertOrder(t, db, 2, "c@example.com", 1000, now)

	all, err := svc.ResolveSegment(ctx, domain.SegmentAll)
	require.NoError(t, err)
	has, err := svc.ResolveSegment(ctx, domain.SegmentHasOrders)
	require.NoError(t, err)
	none, err := svc.ResolveSegment(ctx, domain.SegmentNoOrders)
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}, all)
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, has)
	assert.Equal(t, []string{"b@example.com", "d@example.com"}, none)

	union := append(append([]string{}, has...), none...)
	assert.ElementsMatch(t, all, union)
	for _, email := range has {
		assert.NotContains(t, none, email)
	}

	_, err = svc.ResolveSegment(ctx, domain.Segment("vip"))
	assert.ErrorIs(t, err, domain.ErrInvalidSegment)
}

func TestListIncludesOrderStats(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	ada, err := svc.Upsert(ctx, domain.UpsertRequest{Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, domain.UpsertRequest{Email: "bob@example.com", Name: "Bob"})
	require.NoError(t, err)

	early := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	insertOrder(t, db, 1, "ada@example.com", 2399, early)
	insertOrder(t, db, 2, "ada@example.com", 1000, late)

	resp, err := svc.List(ctx, domain.ListRequest{Segment: "has_orders"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	got := resp.Customers[0]
	assert.Equal(t, ada.ID, got.ID)
	assert.Equal(t, int64(2), got.OrderCount)
	assert.Equal(t, int64(3399), got.LifetimeSpend)
	require.NotNil(t, got.LastOrderAt)
	assert.True(t, got.LastOrderAt.Equal(late))
	assert.False(t, resp.HasMore)

	summary, err := svc.GetByID(ctx, ada.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.OrderCount)

	_, err = svc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	_, err = svc.GetByID(ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.List(ctx, domain.ListRequest{Segment: "vip"})
	assert.ErrorIs(t, err, domain.ErrInvalidSegment)
}
