package propguard

import (
	"context"
	"time"

	"github.com/estateops/propguard/logger"
)

// ============================================================================
// GUARDED QUERY OPERATIONS — CORE
// ============================================================================

// Guard hosts the guarded per-entity operations. Every public method follows
// the same protocol: resolve context, derive scope, validate mutations
// against the fetched row, execute, normalize into the response envelope.
type Guard struct {
	resolver *Resolver
	scope    *ScopeBuilder
	sessions SessionSource
	log      logger.Logger
	now      func() time.Time

	profiles      ProfileStore
	properties    PropertyStore
	contracts     ContractStore
	maintenance   MaintenanceStore
	vouchers      VoucherStore
	invoices      InvoiceStore
	bids          BidStore
	notifications NotificationStore
}

// Stores bundles the storage collaborators handed to NewGuard.
type Stores struct {
	Profiles      ProfileStore
	Properties    PropertyStore
	Contracts     ContractStore
	Maintenance   MaintenanceStore
	Vouchers      VoucherStore
	Invoices      InvoiceStore
	Bids          BidStore
	Notifications NotificationStore
}

func NewGuard(cfg *Config, sessions SessionSource, st Stores, cache ContextCache, log logger.Logger) *Guard {
	if cfg == nil {
		cfg = &Config{}
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	scope := NewScopeBuilder(log)
	scope.Disabled = cfg.Engine.DisableRoleScoping
	return &Guard{
		resolver:      NewResolver(sessions, st.Profiles, st.Properties, st.Contracts, cache, cfg, log),
		scope:         scope,
		sessions:      sessions,
		log:           log,
		now:           time.Now,
		profiles:      st.Profiles,
		properties:    st.Properties,
		contracts:     st.Contracts,
		maintenance:   st.Maintenance,
		vouchers:      st.Vouchers,
		invoices:      st.Invoices,
		bids:          st.Bids,
		notifications: st.Notifications,
	}
}

// Resolver exposes the identity resolver (cache invalidation, clock control).
func (g *Guard) Resolver() *Resolver { return g.resolver }

// SetClock replaces the guard's time source, propagating to the resolver.
func (g *Guard) SetClock(now func() time.Time) {
	g.now = now
	g.resolver.SetClock(now)
}

// SignOut clears the whole context cache and the client session.
func (g *Guard) SignOut(ctx context.Context) {
	g.resolver.Cache().InvalidateAll()
	if err := g.sessions.ClearSession(ctx); err != nil {
		g.log.Error("session clear failed on sign-out", "error", err.Error())
	}
}

// CanPerform answers an action question for the current principal.
func (g *Guard) CanPerform(ctx context.Context, action Action, resourceID string) AccessDecision {
	return CanPerform(g.resolver.Resolve(ctx), action, resourceID, g.log)
}

// requireContext resolves the caller's context, returning a typed error when
// there is no authenticated identity.
func (g *Guard) requireContext(ctx context.Context) (*UserContext, *Error) {
	uc := g.resolver.Resolve(ctx)
	if uc == nil || !uc.IsAuthenticated {
		return nil, &Error{
			Code:    CodeAuthenticationRequired,
			Message: "Please sign in to continue.",
		}
	}
	return uc, nil
}

func accessDenied(reason string) *Error {
	return &Error{Code: CodeAccessDenied, Message: reason}
}

// emptyScope reports whether a list over the collection is provably empty
// without a query. Beyond a zero-row filter, a tenant with no active tenancy
// reads every property-linked collection as empty: the tenant-reference
// filters alone would still surface rows from ended tenancies.
func (g *Guard) emptyScope(uc *UserContext, f ScopeFilter, collection string) bool {
	if f.YieldsNoRows() {
		return true
	}
	if g.scope.Disabled || uc.Role != RoleTenant || len(uc.RentedPropertyIDs) > 0 {
		return false
	}
	switch collection {
	case CollectionContracts, CollectionMaintenance, CollectionVouchers, CollectionInvoices:
		return true
	}
	return false
}

// notify persists a notification after a successful mutation. Best effort:
// failures are logged and never propagated, and the primary mutation is
// never rolled back.
func (g *Guard) notify(ctx context.Context, n *Notification) {
	if g.notifications == nil || n == nil || n.RecipientID == "" {
		return
	}
	n.CreatedAt = g.now()
	if err := g.notifications.CreateNotification(ctx, n); err != nil {
		g.log.Error("notification delivery failed",
			"recipient_id", n.RecipientID, "type", n.Type, "error", err.Error())
	}
}

// ListNotifications returns the caller's notifications; admin and manager see
// everything, every other role only their own.
func (g *Guard) ListNotifications(ctx context.Context, extra map[string]any) Response[[]*Notification] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[[]*Notification](aerr)
	}
	f := Unrestricted()
	if !uc.IsElevated() {
		f = FieldEquals("recipient_id", uc.UserID)
	}
	rows, err := g.notifications.ListNotifications(ctx, f, extra)
	if err != nil {
		return failErr[[]*Notification](g.normalizeStorageError(ctx, err))
	}
	return okCount(rows, len(rows))
}
