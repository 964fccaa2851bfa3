package propguard

import "context"

// ============================================================================
// GUARDED OPERATIONS — INVOICES
// ============================================================================

// ListInvoices returns invoices visible to the caller.
func (g *Guard) ListInvoices(ctx context.Context, extra map[string]any) Response[[]*Invoice] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[[]*Invoice](aerr)
	}
	f := g.scope.Build(uc, CollectionInvoices)
	if g.emptyScope(uc, f, CollectionInvoices) {
		return okCount([]*Invoice{}, 0)
	}
	rows, err := g.invoices.ListInvoices(ctx, f, extra)
	if err != nil {
		return failErr[[]*Invoice](g.normalizeStorageError(ctx, err))
	}
	return okCount(rows, len(rows))
}

// GetInvoice fetches one invoice with row-level access enforcement.
func (g *Guard) GetInvoice(ctx context.Context, id string) Response[*Invoice] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Invoice](aerr)
	}
	inv, err := g.invoices.GetInvoice(ctx, id)
	if err != nil {
		return failErr[*Invoice](g.normalizeStorageError(ctx, err))
	}
	if !g.canSeeInvoice(uc, inv) {
		return failErr[*Invoice](accessDenied("no access to this invoice"))
	}
	return ok(inv)
}

// CreateInvoice inserts an invoice; accountants, property owners and
// elevated roles only. The billed tenant is notified best-effort.
func (g *Guard) CreateInvoice(ctx context.Context, inv *Invoice) Response[*Invoice] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Invoice](aerr)
	}
	if !uc.IsElevated() && uc.Role != RoleAccountant &&
		!(uc.Role == RoleOwner && uc.OwnsProperty(inv.PropertyID)) {
		return failErr[*Invoice](accessDenied("invoices are limited to accountants and the property owner"))
	}
	if inv.Status == "" {
		inv.Status = "unpaid"
	}
	inv.CreatedAt = g.now()
	inv.UpdatedAt = inv.CreatedAt
	created, err := g.invoices.CreateInvoice(ctx, inv)
	if err != nil {
		return failErr[*Invoice](g.normalizeStorageError(ctx, err))
	}
	g.notify(ctx, &Notification{
		RecipientID:       created.TenantID,
		SenderID:          uc.UserID,
		Type:              "invoice_issued",
		Title:             "New invoice",
		Message:           "An invoice was issued against your tenancy.",
		Priority:          "normal",
		RelatedEntityType: CollectionInvoices,
		RelatedEntityID:   created.ID,
	})
	return ok(created)
}

// UpdateInvoice mutates an invoice after fetching the current row and
// checking the same rule as creation.
func (g *Guard) UpdateInvoice(ctx context.Context, inv *Invoice) Response[*Invoice] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Invoice](aerr)
	}
	existing, err := g.invoices.GetInvoice(ctx, inv.ID)
	if err != nil {
		return failErr[*Invoice](g.normalizeStorageError(ctx, err))
	}
	if !uc.IsElevated() && uc.Role != RoleAccountant &&
		!(uc.Role == RoleOwner && uc.OwnsProperty(existing.PropertyID)) {
		return failErr[*Invoice](accessDenied("invoices are limited to accountants and the property owner"))
	}
	inv.PropertyID = existing.PropertyID
	inv.TenantID = existing.TenantID
	inv.UpdatedAt = g.now()
	updated, err := g.invoices.UpdateInvoice(ctx, inv)
	if err != nil {
		return failErr[*Invoice](g.normalizeStorageError(ctx, err))
	}
	return ok(updated)
}

func (g *Guard) canSeeInvoice(uc *UserContext, inv *Invoice) bool {
	if uc.IsElevated() || uc.Role == RoleAccountant {
		return true
	}
	switch uc.Role {
	case RoleOwner:
		return uc.OwnsProperty(inv.PropertyID)
	case RoleTenant:
		return inv.TenantID == uc.UserID
	}
	return false
}
