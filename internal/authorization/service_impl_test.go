package authorization

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq int64

func setup(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:authz_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer}), db
}

func TestAuthorizeByRole(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	owner := staffdomain.Principal{KeyID: "own1", Role: staffdomain.RoleOwner}
	fulfillment := staffdomain.Principal{KeyID: "ful1", Role: staffdomain.RoleFulfillment}
	marketing := staffdomain.Principal{KeyID: "mkt1", Role: staffdomain.RoleMarketing}

	cases := []struct {
		principal staffdomain.Principal
		object    string
		action    string
		allowed   bool
	}{
		{owner, ObjectStaffKey, ActionStaffKeyCreate, true},
		{owner, ObjectCampaign, ActionCampaignSend, true},
		{fulfillment, ObjectOrder, ActionOrderDispatch, true},
		{fulfillment, ObjectCampaign, ActionCampaignSend, false},
		{fulfillment, ObjectStaffKey, ActionStaffKeyView, false},
		{marketing, ObjectCampaign, ActionCampaignSend, true},
		{marketing, ObjectOrder, ActionOrderDispatch, false},
		{marketing, ObjectCustomer, ActionCustomerView, true},
	}
	for _, tc := range cases {
		err := svc.Authorize(ctx, tc.principal, tc.object, tc.action)
		if tc.allowed {
			assert.NoError(t, err, "%s %s", tc.principal.Role, tc.action)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s", tc.principal.Role, tc.action)
		}
	}
}

func TestAuthorizeFollowsRoleChange(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	p := staffdomain.Principal{KeyID: "k1", Role: staffdomain.RoleOwner}
	require.NoError(t, svc.Authorize(ctx, p, ObjectStaffKey, ActionStaffKeyRevoke))

	p.Role = staffdomain.RoleMarketing
	assert.ErrorIs(t, svc.Authorize(ctx, p, ObjectStaffKey, ActionStaffKeyRevoke), ErrForbidden)
}

func TestAuthorizeValidatesInput(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, staffdomain.Principal{Role: staffdomain.RoleOwner}, ObjectOrder, ActionOrderView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, staffdomain.Principal{KeyID: "k", Role: "root"}, ObjectOrder, ActionOrderView), ErrInvalidActor)
	p := staffdomain.Principal{KeyID: "k", Role: staffdomain.RoleOwner}
	assert.ErrorIs(t, svc.Authorize(ctx, p, "", ActionOrderView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, p, ObjectOrder, " "), ErrInvalidAction)
}

func TestNewEnforcerSeedsOnce(t *testing.T) {
	_, db := setup(t)

	_, err := NewEnforcer(db)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("casbin_rule").Where("ptype = ?", "p").Count(&count).Error)
	assert.Equal(t, int64(len(defaultPolicies())), count)
}
