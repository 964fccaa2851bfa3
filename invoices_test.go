package propguard_test

import (
	"context"
	"testing"

	"github.com/estateops/propguard"
)

func TestListInvoicesScoped(t *testing.T) {
	env := newTestEnv(t, nil)
	seedWorld(t, env)
	seedFinancials(t, env)
	ctx := context.Background()

	env.session.signIn("acct-1")
	if resp := env.guard.ListInvoices(ctx, nil); !resp.OK() || resp.Count != 3 {
		t.Fatalf("accountant invoice scope: count=%d err=%v", resp.Count, resp.Error)
	}

	env.session.signIn("tenant-2")
	resp := env.guard.ListInvoices(ctx, nil)
	if !resp.OK() || resp.Count != 1 || resp.Data[0].ID != "i3" {
		t.Fatalf("tenant invoice scope: count=%d err=%v", resp.Count, resp.Error)
	}

	env.session.signIn("owner-1")
	resp = env.guard.ListInvoices(ctx, nil)
	if !resp.OK() || resp.Count != 2 {
		t.Fatalf("owner invoice scope: count=%d err=%v", resp.Count, resp.Error)
	}
}

func TestGetInvoiceRowAccess(t *testing.T) {
	env := newTestEnv(t, nil)
	seedWorld(t, env)
	seedFinancials(t, env)
	ctx := context.Background()

	env.session.signIn("tenant-1")
	if resp := env.guard.GetInvoice(ctx, "i1"); !resp.OK() {
		t.Fatalf("tenant own invoice: %v", resp.Error)
	}
	if resp := env.guard.GetInvoice(ctx, "i3"); resp.OK() || resp.Error.Code != propguard.CodeAccessDenied {
		t.Fatalf("foreign invoice must be denied, got %v", resp.Error)
	}

	env.session.signIn("acct-1")
	if resp := env.guard.GetInvoice(ctx, "i3"); !resp.OK() {
		t.Fatalf("accountant invoice access: %v", resp.Error)
	}
}

func TestCreateInvoiceNotifiesTenant(t *testing.T) {
	env := newTestEnv(t, nil)
	seedWorld(t, env)
	ctx := context.Background()

	env.session.signIn("owner-1")
	created := env.guard.CreateInvoice(ctx, &propguard.Invoice{
		PropertyID: "p1", TenantID: "tenant-1", Amount: 1200,
	})
	if !created.OK() {
		t.Fatalf("create: %v", created.Error)
	}
	if created.Data.Status != "unpaid" {
		t.Fatalf("expected default unpaid status, got %s", created.Data.Status)
	}

	rows, err := env.notifications.ListNotifications(ctx,
		propguard.FieldEquals("recipient_id", "tenant-1"), nil)
	if err != nil || len(rows) != 1 || rows[0].Type != "invoice_issued" {
		t.Fatalf("expected invoice_issued notification, got %v err=%v", rows, err)
	}

	denied := env.guard.CreateInvoice(ctx, &propguard.Invoice{PropertyID: "p3", TenantID: "tenant-2", Amount: 10})
	if denied.OK() || denied.Error.Code != propguard.CodeAccessDenied {
		t.Fatalf("invoicing a foreign property must be denied, got %v", denied.Error)
	}
}

func TestUpdateInvoicePreservesReferences(t *testing.T) {
	env := newTestEnv(t, nil)
	seedWorld(t, env)
	seedFinancials(t, env)
	ctx := context.Background()

	env.session.signIn("acct-1")
	resp := env.guard.UpdateInvoice(ctx, &propguard.Invoice{
		ID: "i2", PropertyID: "p9", TenantID: "nobody", Amount: 300, Status: "paid",
	})
	if !resp.OK() {
		t.Fatalf("update: %v", resp.Error)
	}
	if resp.Data.PropertyID != "p2" || resp.Data.TenantID != "tenant-1" {
		t.Fatalf("invoice references moved: %+v", resp.Data)
	}
	if resp.Data.Status != "paid" {
		t.Fatalf("status change lost: %+v", resp.Data)
	}

	env.session.signIn("tenant-1")
	denied := env.guard.UpdateInvoice(ctx, &propguard.Invoice{ID: "i2", Status: "unpaid"})
	if denied.OK() || denied.Error.Code != propguard.CodeAccessDenied {
		t.Fatalf("tenants cannot modify invoices, got %v", denied.Error)
	}
}
