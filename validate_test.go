package propguard_test

import (
	"testing"

	"github.com/estateops/propguard"
)

func buyerCtx(id string) *propguard.UserContext {
	return &propguard.UserContext{UserID: id, Role: propguard.RoleBuyer, IsAuthenticated: true}
}

func acctCtx(id string) *propguard.UserContext {
	return &propguard.UserContext{UserID: id, Role: propguard.RoleAccountant, IsAuthenticated: true}
}

func TestHasPropertyAccess(t *testing.T) {
	admin := &propguard.UserContext{UserID: "a", Role: propguard.RoleAdmin, IsAuthenticated: true}
	if !propguard.HasPropertyAccess(admin, "p9") {
		t.Fatalf("admin should access any property")
	}
	if !propguard.HasPropertyAccess(ownerCtx("o1", "p1"), "p1") {
		t.Fatalf("owner should access owned property")
	}
	if propguard.HasPropertyAccess(ownerCtx("o1", "p1"), "p2") {
		t.Fatalf("owner should not access unowned property")
	}
	if !propguard.HasPropertyAccess(tenantCtx("t1", "p1"), "p1") {
		t.Fatalf("tenant should access rented property")
	}
	if propguard.HasPropertyAccess(tenantCtx("t1"), "p1") {
		t.Fatalf("tenant without lease should have no access")
	}
	if propguard.HasPropertyAccess(nil, "p1") {
		t.Fatalf("nil context should have no access")
	}
	if propguard.HasPropertyAccess(buyerCtx("b1"), "p1") {
		t.Fatalf("buyer has no row-level property access")
	}
}

func TestCanPerformRules(t *testing.T) {
	admin := &propguard.UserContext{UserID: "a", Role: propguard.RoleAdmin, IsAuthenticated: true}
	owner := ownerCtx("o1", "p1")
	tenant := tenantCtx("t1", "p1")

	cases := []struct {
		name     string
		uc       *propguard.UserContext
		action   propguard.Action
		resource string
		want     bool
	}{
		{"nil context denied", nil, propguard.ActionCreateProperty, "", false},
		{"admin anything", admin, propguard.ActionDeleteProperty, "p9", true},
		{"owner creates property", owner, propguard.ActionCreateProperty, "", true},
		{"tenant creates property", tenant, propguard.ActionCreateProperty, "", false},
		{"owner edits own property", owner, propguard.ActionEditProperty, "p1", true},
		{"owner edits foreign property", owner, propguard.ActionEditProperty, "p2", false},
		{"owner deletes own property", owner, propguard.ActionDeleteProperty, "p1", true},
		{"tenant files maintenance on rented", tenant, propguard.ActionCreateMaintenanceRequest, "p1", true},
		{"tenant files maintenance elsewhere", tenant, propguard.ActionCreateMaintenanceRequest, "p2", false},
		{"owner files maintenance", owner, propguard.ActionCreateMaintenanceRequest, "p1", false},
		{"owner updates maintenance on own", owner, propguard.ActionUpdateMaintenanceRequest, "p1", true},
		{"tenant updates maintenance on rented", tenant, propguard.ActionUpdateMaintenanceRequest, "p1", true},
		{"owner views reports", owner, propguard.ActionViewFinancialReports, "", true},
		{"accountant views reports", acctCtx("a1"), propguard.ActionViewFinancialReports, "", true},
		{"tenant views reports", tenant, propguard.ActionViewFinancialReports, "", false},
		{"accountant creates voucher", acctCtx("a1"), propguard.ActionCreateVoucher, "p9", true},
		{"owner posts voucher on own", owner, propguard.ActionPostVoucher, "p1", true},
		{"owner posts voucher elsewhere", owner, propguard.ActionPostVoucher, "p2", false},
		{"tenant cancels voucher", tenant, propguard.ActionCancelVoucher, "p1", false},
		{"buyer places bid", buyerCtx("b1"), propguard.ActionCreateBid, "p1", true},
		{"owner places bid", owner, propguard.ActionCreateBid, "p1", false},
		{"owner accepts bid on own", owner, propguard.ActionAcceptBid, "p1", true},
		{"buyer accepts bid", buyerCtx("b1"), propguard.ActionAcceptBid, "p1", false},
	}
	for _, tc := range cases {
		dec := propguard.CanPerform(tc.uc, tc.action, tc.resource, nil)
		if dec.Allowed != tc.want {
			t.Fatalf("%s: got allowed=%v reason=%q", tc.name, dec.Allowed, dec.Reason)
		}
		if !dec.Allowed && dec.Reason == "" {
			t.Fatalf("%s: denial must carry a reason", tc.name)
		}
	}
}

func TestCanPerformUnknownActionDenied(t *testing.T) {
	owner := ownerCtx("o1", "p1")
	dec := propguard.CanPerform(owner, propguard.Action("launch_rockets"), "", nil)
	if dec.Allowed {
		t.Fatalf("unknown actions must be denied")
	}
}
