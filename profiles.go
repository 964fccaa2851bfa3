package propguard

import "context"

// ============================================================================
// GUARDED OPERATIONS — PROFILES
// ============================================================================

// ListProfiles returns the profiles visible to the caller. Owners see
// themselves plus the tenants holding active leases on their properties;
// that derived tenant id-set is computed here and OR-ed onto the base scope
// rule, which on its own only covers "self".
func (g *Guard) ListProfiles(ctx context.Context, extra map[string]any) Response[[]*Profile] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[[]*Profile](aerr)
	}
	f := g.scope.Build(uc, CollectionProfiles)
	if uc.Role == RoleOwner && len(uc.OwnedPropertyIDs) > 0 {
		tenantIDs, err := g.contracts.ActiveTenantIDs(ctx, uc.OwnedPropertyIDs, g.now())
		if err != nil {
			g.log.Warn("tenant profile widening failed, owner sees only self",
				"user_id", uc.UserID, "error", err.Error())
		} else if len(tenantIDs) > 0 {
			f = AnyOf(f, FieldIn("id", tenantIDs))
		}
	}
	if f.YieldsNoRows() {
		return okCount([]*Profile{}, 0)
	}
	rows, err := g.profiles.ListProfiles(ctx, f, extra)
	if err != nil {
		return failErr[[]*Profile](g.normalizeStorageError(ctx, err))
	}
	return okCount(rows, len(rows))
}

// GetMyProfile fetches the caller's own profile row.
func (g *Guard) GetMyProfile(ctx context.Context) Response[*Profile] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Profile](aerr)
	}
	p, err := g.profiles.GetProfile(ctx, uc.UserID)
	if err != nil {
		return failErr[*Profile](g.normalizeStorageError(ctx, err))
	}
	return ok(p)
}

// UpdateProfile mutates a profile. Non-elevated callers may only touch their
// own row and cannot change their role; a role change by an elevated caller
// invalidates the target's cached context.
func (g *Guard) UpdateProfile(ctx context.Context, p *Profile) Response[*Profile] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Profile](aerr)
	}
	existing, err := g.profiles.GetProfile(ctx, p.ID)
	if err != nil {
		return failErr[*Profile](g.normalizeStorageError(ctx, err))
	}
	if !uc.IsElevated() {
		if p.ID != uc.UserID {
			return failErr[*Profile](accessDenied("profiles can only be edited by their owner"))
		}
		p.Role = existing.Role
	}
	if !ValidRole(p.Role) {
		return fail[*Profile](CodeQueryError, "unknown role: "+string(p.Role))
	}
	p.UpdatedAt = g.now()
	updated, err := g.profiles.UpdateProfile(ctx, p)
	if err != nil {
		return failErr[*Profile](g.normalizeStorageError(ctx, err))
	}
	if updated.Role != existing.Role {
		g.resolver.Cache().Invalidate(updated.ID)
	}
	return ok(updated)
}
