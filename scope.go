package propguard

import (
	"github.com/estateops/propguard/logger"
	"github.com/estateops/propguard/utils"
)

// ============================================================================
// SCOPE FILTERS
// ============================================================================

// FilterKind tags the ScopeFilter union.
type FilterKind uint8

const (
	FilterUnrestricted FilterKind = iota
	FilterFieldEquals
	FilterFieldIn
	FilterAnyOf
)

// ScopeFilter is a declarative row-restriction predicate over a collection:
// either unrestricted, an equality on a field, a membership test against an
// explicit id set, or an OR of sub-filters. It is recomputed per call from
// the UserContext and never persisted; a single interpreter lowers it to the
// storage layer's query mechanism (see stores.FilterSQL and Matches).
type ScopeFilter struct {
	Kind  FilterKind
	Field string
	Value any
	IDs   []string
	Parts []ScopeFilter
}

func Unrestricted() ScopeFilter { return ScopeFilter{Kind: FilterUnrestricted} }

func FieldEquals(field string, value any) ScopeFilter {
	return ScopeFilter{Kind: FilterFieldEquals, Field: field, Value: value}
}

func FieldIn(field string, ids []string) ScopeFilter {
	return ScopeFilter{Kind: FilterFieldIn, Field: field, IDs: ids}
}

func AnyOf(parts ...ScopeFilter) ScopeFilter {
	return ScopeFilter{Kind: FilterAnyOf, Parts: parts}
}

// NoRows is the impossible filter: membership in an empty id set. List calls
// scoped by it succeed with zero rows rather than erroring.
func NoRows() ScopeFilter { return FieldIn("id", nil) }

func (f ScopeFilter) IsUnrestricted() bool { return f.Kind == FilterUnrestricted }

// YieldsNoRows reports whether the filter can never match a row, which lets
// list operations short-circuit to an empty result without touching storage
// (and avoids emitting a malformed empty IN clause).
func (f ScopeFilter) YieldsNoRows() bool {
	switch f.Kind {
	case FilterFieldIn:
		return len(f.IDs) == 0
	case FilterAnyOf:
		if len(f.Parts) == 0 {
			return true
		}
		for _, p := range f.Parts {
			if !p.YieldsNoRows() {
				return false
			}
		}
		return true
	}
	return false
}

// Matches evaluates the filter against a row exposed through a field getter.
// This is the in-memory interpreter; the SQL one lives in stores.
func (f ScopeFilter) Matches(get func(field string) any) bool {
	switch f.Kind {
	case FilterUnrestricted:
		return true
	case FilterFieldEquals:
		return get(f.Field) == f.Value
	case FilterFieldIn:
		v, _ := get(f.Field).(string)
		return utils.Contains(f.IDs, v)
	case FilterAnyOf:
		for _, p := range f.Parts {
			if p.Matches(get) {
				return true
			}
		}
		return false
	}
	return false
}

// ============================================================================
// SCOPE RULE TABLE
// ============================================================================

type filterBuilder func(uc *UserContext) ScopeFilter

// collectionRules is the declarative per-collection rule table for the
// restricted roles. Collections absent from the table fall through to
// unrestricted (with a warning); that default is intentional and must not be
// tightened without revisiting every caller.
var collectionRules = map[string]map[Role]filterBuilder{
	CollectionProperties: {
		RoleOwner:  func(uc *UserContext) ScopeFilter { return FieldEquals("owner_id", uc.UserID) },
		RoleTenant: func(uc *UserContext) ScopeFilter { return FieldIn("id", uc.RentedPropertyIDs) },
	},
	CollectionProfiles: {
		// Owners additionally see their tenants' profiles; that id set is
		// derived and OR-ed in by the profiles operation, not here.
		RoleOwner:  func(uc *UserContext) ScopeFilter { return FieldEquals("id", uc.UserID) },
		RoleTenant: func(uc *UserContext) ScopeFilter { return FieldEquals("id", uc.UserID) },
	},
	CollectionContracts: {
		RoleOwner:  func(uc *UserContext) ScopeFilter { return FieldIn("property_id", uc.OwnedPropertyIDs) },
		RoleTenant: func(uc *UserContext) ScopeFilter { return FieldEquals("tenant_id", uc.UserID) },
	},
	CollectionMaintenance: {
		RoleOwner:  func(uc *UserContext) ScopeFilter { return FieldIn("property_id", uc.OwnedPropertyIDs) },
		RoleTenant: func(uc *UserContext) ScopeFilter { return FieldEquals("tenant_id", uc.UserID) },
	},
	CollectionVouchers: {
		RoleOwner:  func(uc *UserContext) ScopeFilter { return FieldIn("property_id", uc.OwnedPropertyIDs) },
		RoleTenant: func(uc *UserContext) ScopeFilter { return FieldEquals("tenant_id", uc.UserID) },
	},
	CollectionInvoices: {
		RoleOwner:  func(uc *UserContext) ScopeFilter { return FieldIn("property_id", uc.OwnedPropertyIDs) },
		RoleTenant: func(uc *UserContext) ScopeFilter { return FieldEquals("tenant_id", uc.UserID) },
	},
	CollectionBids: {
		RoleOwner:  func(uc *UserContext) ScopeFilter { return FieldIn("property_id", uc.OwnedPropertyIDs) },
		RoleTenant: func(uc *UserContext) ScopeFilter { return NoRows() },
	},
	CollectionNotifications: {
		RoleOwner:  func(uc *UserContext) ScopeFilter { return FieldEquals("recipient_id", uc.UserID) },
		RoleTenant: func(uc *UserContext) ScopeFilter { return FieldEquals("recipient_id", uc.UserID) },
	},
}

// accountantCollections is the fixed allow-list of financial collections an
// accountant may read unrestricted. Every other collection yields zero rows
// for accountants: reads succeed, they just return nothing.
var accountantCollections = map[string]struct{}{
	"accounts":              {},
	CollectionVouchers:      {},
	CollectionInvoices:      {},
	"cost_centers":          {},
	"fixed_assets":          {},
	"utility_payments":      {},
	"budgets":               {},
	"property_transactions": {},
	"payment_schedules":     {},
	"property_metrics":      {},
}

// ScopeBuilder derives a ScopeFilter from a resolved context for a collection.
type ScopeBuilder struct {
	Log logger.Logger
	// Disabled turns role scoping off globally; every filter comes back
	// unrestricted. Guarded operations still require authentication.
	Disabled bool
}

func NewScopeBuilder(log logger.Logger) *ScopeBuilder {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &ScopeBuilder{Log: log}
}

// Build maps (role, collection) to a filter.
//
// Precedence, in order: nil context or disabled scoping -> unrestricted
// (defensive; guarded operations already require authentication); admin and
// manager -> unrestricted, checked before anything collection-specific;
// accountant -> allow-list or zero rows; owner/tenant -> rule table. Roles
// absent from a listed collection's rules, and collections absent from the
// table entirely, come back unrestricted with a warning. The asymmetry
// between the accountant default (show nothing) and the unlisted-collection
// default (show everything) is deliberate.
func (b *ScopeBuilder) Build(uc *UserContext, collection string) ScopeFilter {
	if uc == nil || b.Disabled {
		return Unrestricted()
	}
	if uc.IsElevated() {
		return Unrestricted()
	}
	if uc.Role == RoleAccountant {
		if _, ok := accountantCollections[collection]; ok {
			return Unrestricted()
		}
		return NoRows()
	}
	rules, ok := collectionRules[collection]
	if !ok {
		b.Log.Warn("no scope rules for collection, returning unrestricted",
			"collection", collection, "role", string(uc.Role))
		return Unrestricted()
	}
	build, ok := rules[uc.Role]
	if !ok {
		return Unrestricted()
	}
	return build(uc)
}
