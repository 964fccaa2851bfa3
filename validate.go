package propguard

import "github.com/estateops/propguard/logger"

// ============================================================================
// ACCESS VALIDATOR
// ============================================================================

// Action names the mutation-type operations that need a yes/no decision
// beyond row filtering.
type Action string

const (
	ActionCreateProperty           Action = "create_property"
	ActionEditProperty             Action = "edit_property"
	ActionDeleteProperty           Action = "delete_property"
	ActionCreateMaintenanceRequest Action = "create_maintenance_request"
	ActionUpdateMaintenanceRequest Action = "update_maintenance_request"
	ActionViewFinancialReports     Action = "view_financial_reports"
	ActionCreateVoucher            Action = "create_voucher"
	ActionPostVoucher              Action = "post_voucher"
	ActionCancelVoucher            Action = "cancel_voucher"
	ActionCreateBid                Action = "create_bid"
	ActionAcceptBid                Action = "accept_bid"
)

// AccessDecision is the outcome of a validated action. It is never persisted;
// it only short-circuits the call.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() AccessDecision             { return AccessDecision{Allowed: true} }
func deny(reason string) AccessDecision { return AccessDecision{Reason: reason} }

// HasPropertyAccess reports whether the context may touch rows of the given
// property: admin/manager always, owner via ownership, tenant via active
// tenancy. Entity operations use this directly for row-level create/update
// guards, independent of CanPerform.
func HasPropertyAccess(uc *UserContext, propertyID string) bool {
	if uc == nil || !uc.IsAuthenticated {
		return false
	}
	if uc.IsElevated() {
		return true
	}
	switch uc.Role {
	case RoleOwner:
		return uc.OwnsProperty(propertyID)
	case RoleTenant:
		return uc.RentsProperty(propertyID)
	}
	return false
}

// CanPerform decides allow/deny for an action, optionally scoped to a target
// resource (a property id for property-bound actions). Unknown actions are
// denied with a warning, never an error.
func CanPerform(uc *UserContext, action Action, resourceID string, log logger.Logger) AccessDecision {
	if log == nil {
		log = logger.NewNullLogger()
	}
	if uc == nil || !uc.IsAuthenticated {
		return deny("authentication required")
	}
	if uc.IsElevated() {
		return allow()
	}

	switch action {
	case ActionCreateProperty:
		if uc.Role == RoleOwner {
			return allow()
		}
		return deny("only owners may create properties")
	case ActionEditProperty, ActionDeleteProperty:
		if uc.Role == RoleOwner && HasPropertyAccess(uc, resourceID) {
			return allow()
		}
		return deny("property can only be modified by its owner")
	case ActionCreateMaintenanceRequest:
		if uc.Role == RoleTenant && HasPropertyAccess(uc, resourceID) {
			return allow()
		}
		return deny("maintenance requests require an active tenancy on the property")
	case ActionUpdateMaintenanceRequest:
		if (uc.Role == RoleTenant || uc.Role == RoleOwner) && HasPropertyAccess(uc, resourceID) {
			return allow()
		}
		return deny("no access to maintenance requests on this property")
	case ActionViewFinancialReports:
		if uc.Role == RoleOwner || uc.Role == RoleAccountant {
			return allow()
		}
		return deny("financial reports are limited to owners and accountants")
	case ActionCreateVoucher, ActionPostVoucher, ActionCancelVoucher:
		if uc.Role == RoleAccountant {
			return allow()
		}
		if uc.Role == RoleOwner && HasPropertyAccess(uc, resourceID) {
			return allow()
		}
		return deny("vouchers are limited to accountants and the property owner")
	case ActionCreateBid:
		if uc.Role == RoleBuyer {
			return allow()
		}
		return deny("only buyers may place bids")
	case ActionAcceptBid:
		if uc.Role == RoleOwner && HasPropertyAccess(uc, resourceID) {
			return allow()
		}
		return deny("bids can only be accepted by the property owner")
	}

	log.Warn("unknown action denied", "action", string(action), "role", string(uc.Role))
	return deny("unknown action")
}
