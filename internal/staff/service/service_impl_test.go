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
	"github.com/smallbiznis/voltshop/internal/staff/domain"
	"github.com/smallbiznis/voltshop/internal/staff/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq int64

func setupService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:staff_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Key{}))

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
	}), db
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Warehouse", Role: "fulfillment"})
	require.NoError(t, err)
	assert.Contains(t, created.APIKey, domain.KeyPrefix+created.KeyID+".")

	principal, err := svc.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)
	assert.Equal(t, created.KeyID, principal.KeyID)
	assert.Equal(t, domain.RoleFulfillment, principal.Role)
	assert.Equal(t, "staff:"+created.KeyID, principal.Subject())

	_, err = svc.Authenticate(ctx, created.APIKey+"x")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotNil(t, keys[0].LastUsedAt)
}

func TestCreateValidates(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Role: "owner"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "x", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestRevokeBlocksAuthentication(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Agency", Role: "marketing"})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, created.KeyID))
	assert.ErrorIs(t, svc.Revoke(ctx, created.KeyID), domain.ErrNotFound)

	_, err = svc.Authenticate(ctx, created.APIKey)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEnsureBootstrapIsIdempotent(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	raw := domain.FormatKey("owner1", "0123456789abcdef0123456789abcdef")

	created, err := svc.EnsureBootstrap(ctx, raw, "owner")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureBootstrap(ctx, raw, "owner")
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&domain.Key{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	principal, err := svc.Authenticate(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, principal.Role)

	_, err = svc.EnsureBootstrap(ctx, "nope", "owner")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}
