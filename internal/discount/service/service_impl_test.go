package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/discount/domain"
	"github.com/smallbiznis/voltshop/internal/discount/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq int64

func setupService(t *testing.T, now time.Time) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:discount_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE discount_codes (
		id INTEGER PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		percent_off NUMERIC NOT NULL DEFAULT 0,
		amount_off INTEGER NOT NULL DEFAULT 0,
		min_subtotal INTEGER NOT NULL DEFAULT 0,
		starts_at DATETIME,
		expires_at DATETIME,
		active BOOLEAN NOT NULL DEFAULT 1,
		description TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(now),
	}).(*Service)
	return svc, db
}

func TestValidateIsReadOnlyAndDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, db := setupService(t, now)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Code: "save10", Kind: "percentage", PercentOff: decimal.NewFromInt(10)})
	require.NoError(t, err)

	var before domain.DiscountCode
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&before).Error)

	first, err := svc.Validate(ctx, domain.ValidateRequest{Code: " Save10 ", SubtotalAmount: 3335})
	require.NoError(t, err)
	second, err := svc.Validate(ctx, domain.ValidateRequest{Code: "SAVE10", SubtotalAmount: 3335})
	require.NoError(t, err)

	assert.True(t, first.Valid)
	assert.Equal(t, int64(334), first.DiscountAmount)
	assert.Equal(t, first, second)

	var after domain.DiscountCode
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&after).Error)
	assert.Equal(t, before.UpdatedAt.Unix(), after.UpdatedAt.Unix())
}

func TestValidateFailureModes(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)
	ctx := context.Background()

	past := now.Add(-48 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	_, err := svc.Create(ctx, domain.CreateRequest{Code: "OLD", Kind: "fixed", AmountOff: 500, StartsAt: &past, ExpiresAt: &yesterday})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Code: "BIG", Kind: "fixed", AmountOff: 1000, MinSubtotal: 5000})
	require.NoError(t, err)

	res, err := svc.Validate(ctx, domain.ValidateRequest{Code: "NOPE", SubtotalAmount: 1000})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonNotFound, res.Reason)

	res, err = svc.Validate(ctx, domain.ValidateRequest{Code: "OLD", SubtotalAmount: 1000})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonExpired, res.Reason)

	res, err = svc.Validate(ctx, domain.ValidateRequest{Code: "BIG", SubtotalAmount: 4000})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, domain.ReasonBelowMinimum, res.Reason)

	res, err = svc.Validate(ctx, domain.ValidateRequest{Code: "", SubtotalAmount: 4000})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonMissingCode, res.Reason)

	_, err = svc.Validate(ctx, domain.ValidateRequest{Code: "BIG", SubtotalAmount: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidSubtotal)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := setupService(t, time.Now())
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Code: "X", Kind: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
	_, err = svc.Create(ctx, domain.CreateRequest{Code: "X", Kind: "percentage", PercentOff: decimal.NewFromInt(150)})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
	_, err = svc.Create(ctx, domain.CreateRequest{Code: "", Kind: "fixed", AmountOff: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(ctx, domain.CreateRequest{Code: "DUP", Kind: "fixed", AmountOff: 100})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Code: "dup", Kind: "fixed", AmountOff: 100})
	assert.ErrorIs(t, err, domain.ErrCodeExists)
}

func TestDeactivate(t *testing.T) {
	svc, _ := setupService(t, time.Now())
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Code: "GONE", Kind: "fixed", AmountOff: 100})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, "gone"))

	res, err := svc.Validate(ctx, domain.ValidateRequest{Code: "GONE", SubtotalAmount: 1000})
	require.NoError(t, err)
	assert.False(t, res.Valid)

	assert.ErrorIs(t, svc.Deactivate(ctx, "missing"), domain.ErrNotFound)

	active, err := svc.List(ctx, domain.ListRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)
}
