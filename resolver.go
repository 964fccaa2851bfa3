package propguard

import (
	"context"
	"errors"
	"time"

	"github.com/estateops/propguard/logger"
	"github.com/estateops/propguard/utils"
)

// ============================================================================
// IDENTITY CONTEXT RESOLVER
// ============================================================================

// Resolver turns the current authenticated principal into a UserContext:
// role from the persisted profile, plus the role-specific derived id sets.
// Results are memoized in the injected ContextCache.
type Resolver struct {
	sessions   SessionSource
	profiles   ProfileStore
	properties PropertyStore
	contracts  ContractStore
	cache      ContextCache
	cfg        *Config
	log        logger.Logger
	now        func() time.Time
}

func NewResolver(
	sessions SessionSource,
	profiles ProfileStore,
	properties PropertyStore,
	contracts ContractStore,
	cache ContextCache,
	cfg *Config,
	log logger.Logger,
) *Resolver {
	if cfg == nil {
		cfg = &Config{}
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	if cache == nil {
		cache = NewMemoryContextCache(cfg.ContextTTL())
	}
	return &Resolver{
		sessions:   sessions,
		profiles:   profiles,
		properties: properties,
		contracts:  contracts,
		cache:      cache,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// SetClock replaces the resolver's time source (active-lease evaluation).
func (r *Resolver) SetClock(now func() time.Time) { r.now = now }

// Cache exposes the injected cache for invalidation by callers
// (logout, role change).
func (r *Resolver) Cache() ContextCache { return r.cache }

// Resolve returns the context for the current principal, or nil when there is
// no usable authenticated identity. It fails closed: any profile fetch error
// other than not-found yields nil, as does a missing profile after the
// provisioning attempt.
func (r *Resolver) Resolve(ctx context.Context) *UserContext {
	prin, err := r.sessions.CurrentPrincipal(ctx)
	if err != nil || prin == nil || prin.ID == "" {
		return nil
	}
	if uc, ok := r.cache.Get(prin.ID); ok {
		return uc
	}

	prof, err := r.profiles.GetProfile(ctx, prin.ID)
	if errors.Is(err, ErrNotFound) {
		prof, err = r.provisionProfile(ctx, prin)
	}
	if err != nil || prof == nil {
		if err != nil {
			r.log.Error("profile resolution failed", "user_id", prin.ID, "error", err.Error())
		}
		return nil
	}

	uc := &UserContext{
		UserID:          prin.ID,
		Role:            prof.Role,
		ProfileType:     prof.ProfileType,
		IsAuthenticated: true,
	}

	switch prof.Role {
	case RoleOwner:
		ids, err := r.properties.OwnedPropertyIDs(ctx, prin.ID)
		if err != nil {
			r.log.Error("owned property lookup failed", "user_id", prin.ID, "error", err.Error())
			return nil
		}
		uc.OwnedPropertyIDs = utils.Dedupe(ids)
	case RoleTenant:
		// Bounded lookup: a slow lease query degrades to "no properties"
		// instead of failing the whole context.
		lctx, cancel := context.WithTimeout(ctx, r.cfg.LeaseLookupTimeout())
		ids, err := r.contracts.ActiveRentedPropertyIDs(lctx, prin.ID, r.now())
		cancel()
		if err != nil {
			r.log.Warn("active lease lookup degraded to empty set",
				"user_id", prin.ID, "error", err.Error())
			ids = nil
		}
		uc.RentedPropertyIDs = utils.Dedupe(ids)
	}

	r.cache.Put(prin.ID, uc)
	return uc
}

// provisionProfile performs the one-shot auto-create for an unrecognized
// principal. The default role comes from config (admin unless overridden);
// a duplicate-key race resolves to re-fetching the row that won.
func (r *Resolver) provisionProfile(ctx context.Context, prin *Principal) (*Profile, error) {
	if !r.cfg.Provisioning.Enabled {
		return nil, nil
	}
	role := r.cfg.ProvisionRole()
	r.log.Info("auto-provisioning profile for unrecognized principal",
		"user_id", prin.ID, "role", string(role))
	prof, err := r.profiles.EnsureProfile(ctx, &Profile{
		ID:        prin.ID,
		Email:     prin.Email,
		FirstName: prin.FirstName,
		LastName:  prin.LastName,
		Role:      role,
	})
	if errors.Is(err, ErrDuplicate) {
		return r.profiles.GetProfile(ctx, prin.ID)
	}
	return prof, err
}
