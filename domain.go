package propguard

import (
	"time"

	"github.com/estateops/propguard/utils"
)

// ============================================================================
// DOMAIN OBJECTS
// ============================================================================

// Role classifies a profile. The set is closed; scope rules and action rules
// dispatch on it.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleOwner      Role = "owner"
	RoleTenant     Role = "tenant"
	RoleBuyer      Role = "buyer"
	RoleStaff      Role = "staff"
	RoleAccountant Role = "accountant"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOwner, RoleTenant, RoleBuyer, RoleStaff, RoleAccountant:
		return true
	}
	return false
}

// Principal is the authenticated identity handed to us by the session layer.
// It is read-only here; issuance and validation live upstream.
type Principal struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Profile is the persisted record backing a principal: role and classification.
type Profile struct {
	ID          string    `json:"id"` // equals the principal id
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        Role      `json:"role"`
	ProfileType string    `json:"profile_type"` // advisory only
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserContext is the resolved, role-enriched view of a principal. Every
// authorization decision starts from one of these.
//
// Invariant: role owner always carries OwnedPropertyIDs (possibly empty,
// never nil); role tenant always carries RentedPropertyIDs likewise.
type UserContext struct {
	UserID            string   `json:"user_id"`
	Role              Role     `json:"role"`
	ProfileType       string   `json:"profile_type"`
	IsAuthenticated   bool     `json:"is_authenticated"`
	OwnedPropertyIDs  []string `json:"owned_property_ids,omitempty"`
	RentedPropertyIDs []string `json:"rented_property_ids,omitempty"`
}

// OwnsProperty reports whether the context's owner id-set contains propertyID.
func (uc *UserContext) OwnsProperty(propertyID string) bool {
	return uc != nil && utils.Contains(uc.OwnedPropertyIDs, propertyID)
}

// RentsProperty reports whether the context's tenancy id-set contains propertyID.
func (uc *UserContext) RentsProperty(propertyID string) bool {
	return uc != nil && utils.Contains(uc.RentedPropertyIDs, propertyID)
}

// IsElevated reports the global admin/manager bypass.
func (uc *UserContext) IsElevated() bool {
	return uc != nil && (uc.Role == RoleAdmin || uc.Role == RoleManager)
}

// ============================================================================
// ENTITIES
// ============================================================================

type Property struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Type      string    `json:"type"` // apartment, villa, office, ...
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContractStatus values for lease contracts.
const (
	ContractActive     = "active"
	ContractExpired    = "expired"
	ContractTerminated = "terminated"
)

type Contract struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	TenantID   string    `json:"tenant_id"`
	Status     string    `json:"status"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	RentAmount float64   `json:"rent_amount"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsActiveAt reports whether the contract is an active lease at t.
func (c *Contract) IsActiveAt(t time.Time) bool {
	return c.Status == ContractActive && !t.Before(c.StartDate) && !t.After(c.EndDate)
}

type MaintenanceRequest struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	TenantID    string    `json:"tenant_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // open, in_progress, resolved
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VoucherStatus follows a one-directional lifecycle:
// draft -> posted -> cancelled (draft may cancel directly, no revisits).
type VoucherStatus string

const (
	VoucherDraft     VoucherStatus = "draft"
	VoucherPosted    VoucherStatus = "posted"
	VoucherCancelled VoucherStatus = "cancelled"
)

type Voucher struct {
	ID          string        `json:"id"`
	PropertyID  string        `json:"property_id"`
	TenantID    string        `json:"tenant_id"`
	Number      string        `json:"number"`
	Amount      float64       `json:"amount"`
	Status      VoucherStatus `json:"status"`
	PostedAt    *time.Time    `json:"posted_at,omitempty"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
	CancelNotes string        `json:"cancel_notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Invoice struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	TenantID   string    `json:"tenant_id"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"` // unpaid, paid, overdue
	DueDate    time.Time `json:"due_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Bid struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	BuyerID    string    `json:"buyer_id"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"` // pending, accepted, rejected
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Notification is the fire-and-forget side channel record emitted after
// successful mutations. Delivery failures never affect the primary operation.
type Notification struct {
	ID                string    `json:"id"`
	RecipientID       string    `json:"recipient_id"`
	SenderID          string    `json:"sender_id"`
	Type              string    `json:"type"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	Priority          string    `json:"priority"`
	RelatedEntityType string    `json:"related_entity_type"`
	RelatedEntityID   string    `json:"related_entity_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// Collection names used by the scope rule table and the stores.
const (
	CollectionProperties    = "properties"
	CollectionProfiles      = "profiles"
	CollectionContracts     = "contracts"
	CollectionMaintenance   = "maintenance_requests"
	CollectionVouchers      = "vouchers"
	CollectionInvoices      = "invoices"
	CollectionBids          = "bids"
	CollectionNotifications = "notifications"
)
