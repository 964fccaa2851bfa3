package propguard

import "context"

// ============================================================================
// GUARDED OPERATIONS — CONTRACTS
// ============================================================================

// ListContracts returns lease contracts visible to the caller: owners see
// contracts on their properties, tenants their own.
func (g *Guard) ListContracts(ctx context.Context, extra map[string]any) Response[[]*Contract] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[[]*Contract](aerr)
	}
	f := g.scope.Build(uc, CollectionContracts)
	if g.emptyScope(uc, f, CollectionContracts) {
		return okCount([]*Contract{}, 0)
	}
	rows, err := g.contracts.ListContracts(ctx, f, extra)
	if err != nil {
		return failErr[[]*Contract](g.normalizeStorageError(ctx, err))
	}
	return okCount(rows, len(rows))
}

// GetContract fetches one contract with row-level access enforcement.
func (g *Guard) GetContract(ctx context.Context, id string) Response[*Contract] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Contract](aerr)
	}
	c, err := g.contracts.GetContract(ctx, id)
	if err != nil {
		return failErr[*Contract](g.normalizeStorageError(ctx, err))
	}
	if !g.canTouchContract(uc, c) {
		return failErr[*Contract](accessDenied("no access to this contract"))
	}
	return ok(c)
}

// CreateContract records a lease. Owners may lease out their own properties;
// admin and manager anything. The tenant's cached context is invalidated so
// their rented id set picks up the new lease.
func (g *Guard) CreateContract(ctx context.Context, c *Contract) Response[*Contract] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Contract](aerr)
	}
	if !uc.IsElevated() && !(uc.Role == RoleOwner && uc.OwnsProperty(c.PropertyID)) {
		return failErr[*Contract](accessDenied("contracts can only be created by the property owner"))
	}
	if c.Status == "" {
		c.Status = ContractActive
	}
	c.CreatedAt = g.now()
	c.UpdatedAt = c.CreatedAt
	created, err := g.contracts.CreateContract(ctx, c)
	if err != nil {
		return failErr[*Contract](g.normalizeStorageError(ctx, err))
	}
	g.resolver.Cache().Invalidate(created.TenantID)
	g.notify(ctx, &Notification{
		RecipientID:       created.TenantID,
		SenderID:          uc.UserID,
		Type:              "contract_created",
		Title:             "Lease contract created",
		Message:           "A lease contract was created for you.",
		Priority:          "normal",
		RelatedEntityType: CollectionContracts,
		RelatedEntityID:   created.ID,
	})
	return ok(created)
}

// UpdateContract mutates a contract after fetching the row and checking
// access; only the property owner (or elevated roles) may change terms.
func (g *Guard) UpdateContract(ctx context.Context, c *Contract) Response[*Contract] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Contract](aerr)
	}
	existing, err := g.contracts.GetContract(ctx, c.ID)
	if err != nil {
		return failErr[*Contract](g.normalizeStorageError(ctx, err))
	}
	if !uc.IsElevated() && !(uc.Role == RoleOwner && uc.OwnsProperty(existing.PropertyID)) {
		return failErr[*Contract](accessDenied("contracts can only be modified by the property owner"))
	}
	c.PropertyID = existing.PropertyID
	c.TenantID = existing.TenantID
	c.UpdatedAt = g.now()
	updated, err := g.contracts.UpdateContract(ctx, c)
	if err != nil {
		return failErr[*Contract](g.normalizeStorageError(ctx, err))
	}
	// Status or date changes shift the tenant's derived id set.
	g.resolver.Cache().Invalidate(updated.TenantID)
	return ok(updated)
}

func (g *Guard) canTouchContract(uc *UserContext, c *Contract) bool {
	if uc.IsElevated() {
		return true
	}
	switch uc.Role {
	case RoleOwner:
		return uc.OwnsProperty(c.PropertyID)
	case RoleTenant:
		return c.TenantID == uc.UserID
	}
	return false
}
