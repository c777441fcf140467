package authorization

import (
	"github.com/casbin/casbin/v2"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
)

const (
	ObjectOrder     = "order"
	ObjectCustomer  = "customer"
	ObjectCampaign  = "campaign"
	ObjectDiscount  = "discount"
	ObjectDashboard = "dashboard"
	ObjectStaffKey  = "staff_key"
)

const (
	ActionOrderView               = "order.view"
	ActionOrderDispatch           = "order.dispatch"
	ActionOrderDeliver            = "order.deliver"
	ActionOrderResendConfirmation = "order.resend_confirmation"

	ActionCustomerView = "customer.view"

	ActionCampaignView = "campaign.view"
	ActionCampaignSend = "campaign.send"

	ActionDiscountView       = "discount.view"
	ActionDiscountCreate     = "discount.create"
	ActionDiscountDeactivate = "discount.deactivate"

	ActionDashboardView = "dashboard.view"

	ActionStaffKeyView   = "staff_key.view"
	ActionStaffKeyCreate = "staff_key.create"
	ActionStaffKeyRevoke = "staff_key.revoke"
)

func roleSubject(role staffdomain.Role) string {
	return "role:" + string(role)
}

func defaultPolicies() [][]string {
	owner := roleSubject(staffdomain.RoleOwner)
	fulfillment := roleSubject(staffdomain.RoleFulfillment)
	marketing := roleSubject(staffdomain.RoleMarketing)

	return [][]string{
		// Owner
		{owner, ObjectOrder, ActionOrderView},
		{owner, ObjectOrder, ActionOrderDispatch},
		{owner, ObjectOrder, ActionOrderDeliver},
		{owner, ObjectOrder, ActionOrderResendConfirmation},
		{owner, ObjectCustomer, ActionCustomerView},
		{owner, ObjectCampaign, ActionCampaignView},
		{owner, ObjectCampaign, ActionCampaignSend},
		{owner, ObjectDiscount, ActionDiscountView},
		{owner, ObjectDiscount, ActionDiscountCreate},
		{owner, ObjectDiscount, ActionDiscountDeactivate},
		{owner, ObjectDashboard, ActionDashboardView},
		{owner, ObjectStaffKey, ActionStaffKeyView},
		{owner, ObjectStaffKey, ActionStaffKeyCreate},
		{owner, ObjectStaffKey, ActionStaffKeyRevoke},

		// Fulfillment
		{fulfillment, ObjectOrder, ActionOrderView},
		{fulfillment, ObjectOrder, ActionOrderDispatch},
		{fulfillment, ObjectOrder, ActionOrderDeliver},
		{fulfillment, ObjectOrder, ActionOrderResendConfirmation},
		{fulfillment, ObjectCustomer, ActionCustomerView},
		{fulfillment, ObjectDashboard, ActionDashboardView},

		// Marketing
		{marketing, ObjectCampaign, ActionCampaignView},
		{marketing, ObjectCampaign, ActionCampaignSend},
		{marketing, ObjectCustomer, ActionCustomerView},
		{marketing, ObjectDiscount, ActionDiscountView},
		{marketing, ObjectDiscount, ActionDiscountCreate},
		{marketing, ObjectDiscount, ActionDiscountDeactivate},
		{marketing, ObjectDashboard, ActionDashboardView},
	}
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	for _, policy := range defaultPolicies() {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
