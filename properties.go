package propguard

import "context"

// ============================================================================
// GUARDED OPERATIONS — PROPERTIES
// ============================================================================

// ListProperties returns the properties visible to the caller. The role scope
// applies before any caller-supplied filters; an empty tenant id-set
// short-circuits to an empty success without touching storage.
func (g *Guard) ListProperties(ctx context.Context, extra map[string]any) Response[[]*Property] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[[]*Property](aerr)
	}
	f := g.scope.Build(uc, CollectionProperties)
	if f.YieldsNoRows() {
		return okCount([]*Property{}, 0)
	}
	rows, err := g.properties.ListProperties(ctx, f, extra)
	if err != nil {
		return failErr[[]*Property](g.normalizeStorageError(ctx, err))
	}
	return okCount(rows, len(rows))
}

// CountProperties counts visible properties without fetching them.
func (g *Guard) CountProperties(ctx context.Context, extra map[string]any) Response[int] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[int](aerr)
	}
	f := g.scope.Build(uc, CollectionProperties)
	if f.YieldsNoRows() {
		return ok(0)
	}
	n, err := g.properties.CountProperties(ctx, f, extra)
	if err != nil {
		return failErr[int](g.normalizeStorageError(ctx, err))
	}
	return ok(n)
}

// GetProperty fetches a single property, enforcing row access for
// non-elevated roles.
func (g *Guard) GetProperty(ctx context.Context, id string) Response[*Property] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Property](aerr)
	}
	p, err := g.properties.GetProperty(ctx, id)
	if err != nil {
		return failErr[*Property](g.normalizeStorageError(ctx, err))
	}
	if !uc.IsElevated() && !HasPropertyAccess(uc, p.ID) {
		return failErr[*Property](accessDenied("no access to this property"))
	}
	return ok(p)
}

// CreateProperty inserts a property. Owners create for themselves; admin and
// manager may create on behalf of an owner, in which case the owner gets a
// notification after the insert succeeds.
func (g *Guard) CreateProperty(ctx context.Context, p *Property) Response[*Property] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Property](aerr)
	}
	if dec := CanPerform(uc, ActionCreateProperty, "", g.log); !dec.Allowed {
		return failErr[*Property](accessDenied(dec.Reason))
	}
	if uc.Role == RoleOwner {
		p.OwnerID = uc.UserID
	}
	p.CreatedAt = g.now()
	p.UpdatedAt = p.CreatedAt
	created, err := g.properties.CreateProperty(ctx, p)
	if err != nil {
		return failErr[*Property](g.normalizeStorageError(ctx, err))
	}
	// Keep the owner's derived id set fresh.
	g.resolver.Cache().Invalidate(created.OwnerID)
	if uc.UserID != created.OwnerID {
		g.notify(ctx, &Notification{
			RecipientID:       created.OwnerID,
			SenderID:          uc.UserID,
			Type:              "property_created",
			Title:             "Property registered",
			Message:           "A property was registered under your account: " + created.Name,
			Priority:          "normal",
			RelatedEntityType: CollectionProperties,
			RelatedEntityID:   created.ID,
		})
	}
	return ok(created)
}

// UpdateProperty mutates a property after fetching the current row and
// checking ownership for non-elevated roles.
func (g *Guard) UpdateProperty(ctx context.Context, p *Property) Response[*Property] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Property](aerr)
	}
	if !uc.IsElevated() {
		existing, err := g.properties.GetProperty(ctx, p.ID)
		if err != nil {
			return failErr[*Property](g.normalizeStorageError(ctx, err))
		}
		if dec := CanPerform(uc, ActionEditProperty, existing.ID, g.log); !dec.Allowed {
			return failErr[*Property](accessDenied(dec.Reason))
		}
		// The owner reference never changes through this path.
		p.OwnerID = existing.OwnerID
	}
	p.UpdatedAt = g.now()
	updated, err := g.properties.UpdateProperty(ctx, p)
	if err != nil {
		return failErr[*Property](g.normalizeStorageError(ctx, err))
	}
	return ok(updated)
}

// DeleteProperty removes a property, owner or elevated roles only.
func (g *Guard) DeleteProperty(ctx context.Context, id string) Response[bool] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[bool](aerr)
	}
	if !uc.IsElevated() {
		existing, err := g.properties.GetProperty(ctx, id)
		if err != nil {
			return failErr[bool](g.normalizeStorageError(ctx, err))
		}
		if dec := CanPerform(uc, ActionDeleteProperty, existing.ID, g.log); !dec.Allowed {
			return failErr[bool](accessDenied(dec.Reason))
		}
	}
	if err := g.properties.DeleteProperty(ctx, id); err != nil {
		return failErr[bool](g.normalizeStorageError(ctx, err))
	}
	g.resolver.Cache().Invalidate(uc.UserID)
	return ok(true)
}
