package stores

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/estateops/propguard"
	"github.com/oarkflow/squealx"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *squealx.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	db := squealx.NewDb(sqlDB, "sqlite", "testdb")
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSQLPropertyStoreOwnerScopeRoundtrip(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLPropertyStore(db)
	ctx := context.Background()
	now := time.Now()

	for _, p := range []*propguard.Property{
		{ID: "p1", OwnerID: "owner-1", Name: "Villa A", City: "Riyadh", Type: "villa", Status: "active", CreatedAt: now, UpdatedAt: now},
		{ID: "p2", OwnerID: "owner-1", Name: "Flat B", City: "Jeddah", Type: "apartment", Status: "active", CreatedAt: now, UpdatedAt: now},
		{ID: "p3", OwnerID: "owner-2", Name: "Office C", City: "Riyadh", Type: "office", Status: "active", CreatedAt: now, UpdatedAt: now},
	} {
		if _, err := store.CreateProperty(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.ID, err)
		}
	}

	rows, err := store.ListProperties(ctx, propguard.FieldEquals("owner_id", "owner-1"), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.OwnerID != "owner-1" {
			t.Fatalf("leaked row %s owned by %s", r.ID, r.OwnerID)
		}
	}

	n, err := store.CountProperties(ctx, propguard.FieldEquals("owner_id", "owner-1"), nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}

	ids, err := store.OwnedPropertyIDs(ctx, "owner-2")
	if err != nil {
		t.Fatalf("owned ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != "p3" {
		t.Fatalf("expected [p3], got %v", ids)
	}

	if _, err := store.GetProperty(ctx, "missing"); err != propguard.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLPropertyStoreFieldInAndExtra(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLPropertyStore(db)
	ctx := context.Background()
	now := time.Now()

	for _, p := range []*propguard.Property{
		{ID: "p1", OwnerID: "o1", Name: "A", City: "Riyadh", Type: "villa", Status: "active", CreatedAt: now, UpdatedAt: now},
		{ID: "p2", OwnerID: "o1", Name: "B", City: "Riyadh", Type: "villa", Status: "archived", CreatedAt: now, UpdatedAt: now},
		{ID: "p3", OwnerID: "o2", Name: "C", City: "Riyadh", Type: "villa", Status: "active", CreatedAt: now, UpdatedAt: now},
	} {
		if _, err := store.CreateProperty(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	rows, err := store.ListProperties(ctx, propguard.FieldIn("id", []string{"p1", "p2"}), map[string]any{"status": "active"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "p1" {
		t.Fatalf("expected [p1], got %d rows", len(rows))
	}
}

func TestSQLProfileStoreEnsureIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLProfileStore(db)
	ctx := context.Background()

	p := &propguard.Profile{ID: "u1", Email: "u1@example.com", Role: propguard.RoleOwner}
	if _, err := store.EnsureProfile(ctx, p); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	again := &propguard.Profile{ID: "u1", Email: "changed@example.com", Role: propguard.RoleTenant}
	got, err := store.EnsureProfile(ctx, again)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if got.Role != propguard.RoleOwner {
		t.Fatalf("ensure overwrote existing profile: role=%s", got.Role)
	}
}

func TestSQLContractStoreActiveLeaseLookups(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLContractStore(db)
	ctx := context.Background()
	now := time.Now()

	contracts := []*propguard.Contract{
		{ID: "c1", PropertyID: "p1", TenantID: "t1", Status: propguard.ContractActive,
			StartDate: now.AddDate(0, -1, 0), EndDate: now.AddDate(0, 11, 0), RentAmount: 1000, CreatedAt: now, UpdatedAt: now},
		{ID: "c2", PropertyID: "p2", TenantID: "t1", Status: propguard.ContractExpired,
			StartDate: now.AddDate(-2, 0, 0), EndDate: now.AddDate(-1, 0, 0), RentAmount: 900, CreatedAt: now, UpdatedAt: now},
		{ID: "c3", PropertyID: "p1", TenantID: "t2", Status: propguard.ContractActive,
			StartDate: now.AddDate(0, -2, 0), EndDate: now.AddDate(0, 10, 0), RentAmount: 1100, CreatedAt: now, UpdatedAt: now},
	}
	for _, c := range contracts {
		if _, err := store.CreateContract(ctx, c); err != nil {
			t.Fatalf("create %s: %v", c.ID, err)
		}
	}

	rented, err := store.ActiveRentedPropertyIDs(ctx, "t1", now)
	if err != nil {
		t.Fatalf("rented: %v", err)
	}
	if len(rented) != 1 || rented[0] != "p1" {
		t.Fatalf("expected [p1], got %v", rented)
	}

	tenants, err := store.ActiveTenantIDs(ctx, []string{"p1"}, now)
	if err != nil {
		t.Fatalf("tenants: %v", err)
	}
	if len(tenants) != 2 {
		t.Fatalf("expected 2 tenants, got %v", tenants)
	}
}

func TestSQLVoucherStoreDeleteOnlyDrafts(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLVoucherStore(db)
	ctx := context.Background()
	now := time.Now()

	draft := &propguard.Voucher{ID: "v1", PropertyID: "p1", TenantID: "t1", Number: "V-001",
		Amount: 500, Status: propguard.VoucherDraft, CreatedAt: now, UpdatedAt: now}
	posted := &propguard.Voucher{ID: "v2", PropertyID: "p1", TenantID: "t1", Number: "V-002",
		Amount: 700, Status: propguard.VoucherPosted, PostedAt: &now, CreatedAt: now, UpdatedAt: now}
	for _, v := range []*propguard.Voucher{draft, posted} {
		if _, err := store.CreateVoucher(ctx, v); err != nil {
			t.Fatalf("create %s: %v", v.ID, err)
		}
	}

	if err := store.DeleteVoucher(ctx, "v2"); err != propguard.ErrNotFound {
		t.Fatalf("posted voucher delete: expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteVoucher(ctx, "v1"); err != nil {
		t.Fatalf("draft voucher delete: %v", err)
	}
	if _, err := store.GetVoucher(ctx, "v1"); err != propguard.ErrNotFound {
		t.Fatalf("expected v1 gone, got %v", err)
	}

	got, err := store.GetVoucher(ctx, "v2")
	if err != nil {
		t.Fatalf("get v2: %v", err)
	}
	if got.PostedAt == nil {
		t.Fatalf("posted_at not round-tripped")
	}
}

func TestFilterSQLLowering(t *testing.T) {
	args := map[string]any{}
	clause := FilterSQL(propguard.FieldEquals("owner_id", "o1"), args)
	if clause != "owner_id = :sf0" || args["sf0"] != "o1" {
		t.Fatalf("equals lowering: %q %v", clause, args)
	}

	args = map[string]any{}
	clause = FilterSQL(propguard.FieldIn("id", nil), args)
	if clause != "1 = 0" {
		t.Fatalf("empty IN lowering: %q", clause)
	}

	args = map[string]any{}
	clause = FilterSQL(propguard.AnyOf(propguard.FieldEquals("id", "u1"), propguard.Unrestricted()), args)
	if clause != "" {
		t.Fatalf("anyof with unrestricted branch should collapse, got %q", clause)
	}

	args = map[string]any{}
	clause = FilterSQL(propguard.AnyOf(propguard.FieldEquals("id", "u1"), propguard.FieldIn("id", []string{"a", "b"})), args)
	if clause == "" || len(args) != 3 {
		t.Fatalf("anyof lowering: %q %v", clause, args)
	}
}
