package propguard

import (
	"context"
	"time"
)

// ============================================================================
// STORAGE & SESSION CONTRACTS
// ============================================================================

// SessionSource is the external auth collaborator: it yields the current
// authenticated principal and clears the client session when the guard
// detects an unrecoverable auth failure.
type SessionSource interface {
	CurrentPrincipal(ctx context.Context) (*Principal, error)
	ClearSession(ctx context.Context) error
}

// Each store takes the derived ScopeFilter plus any caller-supplied equality
// filters; the scope filter always applies first and caller filters only
// narrow further. Single-row misses come back as ErrNotFound; duplicate-key
// inserts as ErrDuplicate.

type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	// EnsureProfile is an idempotent upsert: it inserts the profile if
	// missing and tolerates a concurrent insert by re-fetching the row that
	// won the race.
	EnsureProfile(ctx context.Context, p *Profile) (*Profile, error)
	UpdateProfile(ctx context.Context, p *Profile) (*Profile, error)
	ListProfiles(ctx context.Context, f ScopeFilter, extra map[string]any) ([]*Profile, error)
}

type PropertyStore interface {
	ListProperties(ctx context.Context, f ScopeFilter, extra map[string]any) ([]*Property, error)
	CountProperties(ctx context.Context, f ScopeFilter, extra map[string]any) (int, error)
	GetProperty(ctx context.Context, id string) (*Property, error)
	CreateProperty(ctx context.Context, p *Property) (*Property, error)
	UpdateProperty(ctx context.Context, p *Property) (*Property, error)
	DeleteProperty(ctx context.Context, id string) error
	// OwnedPropertyIDs returns the ids of properties whose owner reference
	// equals ownerID. Never nil on success.
	OwnedPropertyIDs(ctx context.Context, ownerID string) ([]string, error)
}

type ContractStore interface {
	ListContracts(ctx context.Context, f ScopeFilter, extra map[string]any) ([]*Contract, error)
	GetContract(ctx context.Context, id string) (*Contract, error)
	CreateContract(ctx context.Context, c *Contract) (*Contract, error)
	UpdateContract(ctx context.Context, c *Contract) (*Contract, error)
	// ActiveRentedPropertyIDs returns property ids from contracts where the
	// tenant matches, status is active and now falls within the lease dates.
	ActiveRentedPropertyIDs(ctx context.Context, tenantID string, now time.Time) ([]string, error)
	// ActiveTenantIDs returns tenant ids holding active leases on any of the
	// given properties (used to widen an owner's profile visibility).
	ActiveTenantIDs(ctx context.Context, propertyIDs []string, now time.Time) ([]string, error)
}

type MaintenanceStore interface {
	ListRequests(ctx context.Context, f ScopeFilter, extra map[string]any) ([]*MaintenanceRequest, error)
	GetRequest(ctx context.Context, id string) (*MaintenanceRequest, error)
	CreateRequest(ctx context.Context, r *MaintenanceRequest) (*MaintenanceRequest, error)
	UpdateRequest(ctx context.Context, r *MaintenanceRequest) (*MaintenanceRequest, error)
}

type VoucherStore interface {
	ListVouchers(ctx context.Context, f ScopeFilter, extra map[string]any) ([]*Voucher, error)
	GetVoucher(ctx context.Context, id string) (*Voucher, error)
	CreateVoucher(ctx context.Context, v *Voucher) (*Voucher, error)
	UpdateVoucher(ctx context.Context, v *Voucher) (*Voucher, error)
	DeleteVoucher(ctx context.Context, id string) error
}

type InvoiceStore interface {
	ListInvoices(ctx context.Context, f ScopeFilter, extra map[string]any) ([]*Invoice, error)
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	CreateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error)
}

type BidStore interface {
	ListBids(ctx context.Context, f ScopeFilter, extra map[string]any) ([]*Bid, error)
	GetBid(ctx context.Context, id string) (*Bid, error)
	CreateBid(ctx context.Context, b *Bid) (*Bid, error)
	UpdateBid(ctx context.Context, b *Bid) (*Bid, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, f ScopeFilter, extra map[string]any) ([]*Notification, error)
}
