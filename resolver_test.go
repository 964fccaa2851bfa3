package propguard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estateops/propguard"
	"github.com/estateops/propguard/stores"
)

// slowContractStore blocks the active-lease query until the caller's context
// expires, modeling a lease lookup that exceeds its deadline.
type slowContractStore struct {
	*stores.MemoryContractStore
}

func (s *slowContractStore) ActiveRentedPropertyIDs(ctx context.Context, tenantID string, now time.Time) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// countingProfileStore tracks profile fetches so tests can prove cache hits.
type countingProfileStore struct {
	*stores.MemoryProfileStore
	getCalls int
}

func (s *countingProfileStore) GetProfile(ctx context.Context, id string) (*propguard.Profile, error) {
	s.getCalls++
	return s.MemoryProfileStore.GetProfile(ctx, id)
}

// dupProfileStore simulates losing the provisioning insert race.
type dupProfileStore struct {
	*stores.MemoryProfileStore
	winner *propguard.Profile
}

func (s *dupProfileStore) GetProfile(ctx context.Context, id string) (*propguard.Profile, error) {
	if s.winner != nil && s.winner.ID == id {
		return s.winner, nil
	}
	return s.MemoryProfileStore.GetProfile(ctx, id)
}

func (s *dupProfileStore) EnsureProfile(ctx context.Context, p *propguard.Profile) (*propguard.Profile, error) {
	s.winner = &propguard.Profile{ID: p.ID, Email: p.Email, Role: propguard.RoleTenant}
	return nil, propguard.ErrDuplicate
}

func newResolver(session propguard.SessionSource, profiles propguard.ProfileStore,
	properties propguard.PropertyStore, contracts propguard.ContractStore,
	cfg *propguard.Config) *propguard.Resolver {
	return propguard.NewResolver(session, profiles, properties, contracts, nil, cfg, nil)
}

func TestResolveOwnerAugmentsOwnedSet(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{}
	session.signIn("owner-1")

	profiles := stores.NewMemoryProfileStore()
	profiles.EnsureProfile(ctx, &propguard.Profile{ID: "owner-1", Role: propguard.RoleOwner})
	properties := stores.NewMemoryPropertyStore()
	properties.CreateProperty(ctx, &propguard.Property{ID: "p1", OwnerID: "owner-1"})
	properties.CreateProperty(ctx, &propguard.Property{ID: "p2", OwnerID: "owner-9"})

	r := newResolver(session, profiles, properties, stores.NewMemoryContractStore(), nil)
	uc := r.Resolve(ctx)
	if uc == nil || uc.Role != propguard.RoleOwner {
		t.Fatalf("unexpected context: %+v", uc)
	}
	if len(uc.OwnedPropertyIDs) != 1 || uc.OwnedPropertyIDs[0] != "p1" {
		t.Fatalf("expected owned set [p1], got %v", uc.OwnedPropertyIDs)
	}
}

func TestResolveTenantAugmentsRentedSet(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	session := &fakeSession{}
	session.signIn("tenant-1")

	profiles := stores.NewMemoryProfileStore()
	profiles.EnsureProfile(ctx, &propguard.Profile{ID: "tenant-1", Role: propguard.RoleTenant})
	contracts := stores.NewMemoryContractStore()
	contracts.CreateContract(ctx, &propguard.Contract{
		ID: "c1", PropertyID: "p1", TenantID: "tenant-1", Status: propguard.ContractActive,
		StartDate: now.AddDate(0, -1, 0), EndDate: now.AddDate(1, 0, 0),
	})
	contracts.CreateContract(ctx, &propguard.Contract{
		ID: "c2", PropertyID: "p2", TenantID: "tenant-1", Status: propguard.ContractExpired,
		StartDate: now.AddDate(-2, 0, 0), EndDate: now.AddDate(-1, 0, 0),
	})

	r := newResolver(session, profiles, stores.NewMemoryPropertyStore(), contracts, nil)
	uc := r.Resolve(ctx)
	if uc == nil {
		t.Fatalf("resolution failed")
	}
	if len(uc.RentedPropertyIDs) != 1 || uc.RentedPropertyIDs[0] != "p1" {
		t.Fatalf("expected rented set [p1], got %v", uc.RentedPropertyIDs)
	}
}

func TestResolveMemoizesContext(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{}
	session.signIn("u1")

	profiles := &countingProfileStore{MemoryProfileStore: stores.NewMemoryProfileStore()}
	profiles.EnsureProfile(ctx, &propguard.Profile{ID: "u1", Role: propguard.RoleStaff})

	r := newResolver(session, profiles, stores.NewMemoryPropertyStore(), stores.NewMemoryContractStore(), nil)
	if r.Resolve(ctx) == nil || r.Resolve(ctx) == nil {
		t.Fatalf("resolution failed")
	}
	if profiles.getCalls != 1 {
		t.Fatalf("expected one profile fetch, got %d", profiles.getCalls)
	}

	r.Cache().Invalidate("u1")
	if r.Resolve(ctx) == nil {
		t.Fatalf("resolution failed after invalidation")
	}
	if profiles.getCalls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d", profiles.getCalls)
	}
}

func TestResolveFailsClosedWithoutProfile(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{}
	session.signIn("ghost")

	r := newResolver(session, stores.NewMemoryProfileStore(), stores.NewMemoryPropertyStore(),
		stores.NewMemoryContractStore(), nil)
	if uc := r.Resolve(ctx); uc != nil {
		t.Fatalf("unknown principal without provisioning must resolve to nil, got %+v", uc)
	}
}

func TestResolveFailsClosedOnSessionError(t *testing.T) {
	r := newResolver(&fakeSession{err: errors.New("boom")}, stores.NewMemoryProfileStore(),
		stores.NewMemoryPropertyStore(), stores.NewMemoryContractStore(), nil)
	if uc := r.Resolve(context.Background()); uc != nil {
		t.Fatalf("session error must resolve to nil, got %+v", uc)
	}
}

func TestResolveAutoProvisionsWithConfiguredRole(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{}
	session.signIn("new-user")

	profiles := stores.NewMemoryProfileStore()
	cfg := &propguard.Config{Provisioning: propguard.ProvisioningConfig{Enabled: true}}

	r := newResolver(session, profiles, stores.NewMemoryPropertyStore(), stores.NewMemoryContractStore(), cfg)
	uc := r.Resolve(ctx)
	if uc == nil || uc.Role != propguard.RoleAdmin {
		t.Fatalf("expected provisioned admin context, got %+v", uc)
	}

	prof, err := profiles.GetProfile(ctx, "new-user")
	if err != nil || prof.Role != propguard.RoleAdmin {
		t.Fatalf("profile not persisted: %+v %v", prof, err)
	}
}

func TestResolveAutoProvisionRoleOverride(t *testing.T) {
	session := &fakeSession{}
	session.signIn("new-user")
	cfg := &propguard.Config{Provisioning: propguard.ProvisioningConfig{
		Enabled: true, DefaultRole: propguard.RoleTenant,
	}}

	r := newResolver(session, stores.NewMemoryProfileStore(), stores.NewMemoryPropertyStore(),
		stores.NewMemoryContractStore(), cfg)
	uc := r.Resolve(context.Background())
	if uc == nil || uc.Role != propguard.RoleTenant {
		t.Fatalf("expected tenant context, got %+v", uc)
	}
}

func TestResolveProvisionLosesRaceAndRefetches(t *testing.T) {
	session := &fakeSession{}
	session.signIn("new-user")
	profiles := &dupProfileStore{MemoryProfileStore: stores.NewMemoryProfileStore()}
	cfg := &propguard.Config{Provisioning: propguard.ProvisioningConfig{Enabled: true}}

	r := newResolver(session, profiles, stores.NewMemoryPropertyStore(), stores.NewMemoryContractStore(), cfg)
	uc := r.Resolve(context.Background())
	if uc == nil || uc.Role != propguard.RoleTenant {
		t.Fatalf("expected the racing insert's row to win, got %+v", uc)
	}
}

func TestResolveLeaseTimeoutDegradesToEmptySet(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{}
	session.signIn("tenant-1")

	profiles := stores.NewMemoryProfileStore()
	profiles.EnsureProfile(ctx, &propguard.Profile{ID: "tenant-1", Role: propguard.RoleTenant})
	cfg := &propguard.Config{Engine: propguard.EngineConfig{LeaseLookupTimeoutMs: 20}}

	r := newResolver(session, profiles, stores.NewMemoryPropertyStore(),
		&slowContractStore{MemoryContractStore: stores.NewMemoryContractStore()}, cfg)
	uc := r.Resolve(ctx)
	if uc == nil || !uc.IsAuthenticated {
		t.Fatalf("slow lease lookup must not fail resolution, got %+v", uc)
	}
	if uc.RentedPropertyIDs == nil || len(uc.RentedPropertyIDs) != 0 {
		t.Fatalf("expected empty non-nil rented set, got %v", uc.RentedPropertyIDs)
	}
}
