package propguard

import "context"

// ============================================================================
// GUARDED OPERATIONS — MAINTENANCE REQUESTS
// ============================================================================

// ListMaintenanceRequests returns requests visible to the caller. Tenants
// with no active tenancy short-circuit to an empty success result.
func (g *Guard) ListMaintenanceRequests(ctx context.Context, extra map[string]any) Response[[]*MaintenanceRequest] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[[]*MaintenanceRequest](aerr)
	}
	f := g.scope.Build(uc, CollectionMaintenance)
	if g.emptyScope(uc, f, CollectionMaintenance) {
		return okCount([]*MaintenanceRequest{}, 0)
	}
	rows, err := g.maintenance.ListRequests(ctx, f, extra)
	if err != nil {
		return failErr[[]*MaintenanceRequest](g.normalizeStorageError(ctx, err))
	}
	return okCount(rows, len(rows))
}

// CreateMaintenanceRequest files a request. The caller's role is checked
// against the target property before insert: tenants need an active tenancy
// there. The property owner is notified best-effort.
func (g *Guard) CreateMaintenanceRequest(ctx context.Context, r *MaintenanceRequest) Response[*MaintenanceRequest] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*MaintenanceRequest](aerr)
	}
	if dec := CanPerform(uc, ActionCreateMaintenanceRequest, r.PropertyID, g.log); !dec.Allowed {
		return failErr[*MaintenanceRequest](accessDenied(dec.Reason))
	}
	if uc.Role == RoleTenant {
		r.TenantID = uc.UserID
	}
	if r.Status == "" {
		r.Status = "open"
	}
	r.CreatedAt = g.now()
	r.UpdatedAt = r.CreatedAt
	created, err := g.maintenance.CreateRequest(ctx, r)
	if err != nil {
		return failErr[*MaintenanceRequest](g.normalizeStorageError(ctx, err))
	}
	if prop, perr := g.properties.GetProperty(ctx, created.PropertyID); perr == nil {
		g.notify(ctx, &Notification{
			RecipientID:       prop.OwnerID,
			SenderID:          uc.UserID,
			Type:              "maintenance_requested",
			Title:             "New maintenance request",
			Message:           created.Title,
			Priority:          created.Priority,
			RelatedEntityType: CollectionMaintenance,
			RelatedEntityID:   created.ID,
		})
	}
	return ok(created)
}

// UpdateMaintenanceRequest mutates a request. The existing row is fetched
// first for non-elevated roles and access is decided per entity rule: the
// filing tenant (still holding tenancy on that property), the property
// owner, or admin/manager. Anyone else gets AccessDenied before any write.
func (g *Guard) UpdateMaintenanceRequest(ctx context.Context, r *MaintenanceRequest) Response[*MaintenanceRequest] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*MaintenanceRequest](aerr)
	}
	existing, err := g.maintenance.GetRequest(ctx, r.ID)
	if err != nil {
		return failErr[*MaintenanceRequest](g.normalizeStorageError(ctx, err))
	}
	if !g.canMutateMaintenance(uc, existing) {
		return failErr[*MaintenanceRequest](accessDenied("no access to this maintenance request"))
	}
	r.PropertyID = existing.PropertyID
	r.TenantID = existing.TenantID
	r.UpdatedAt = g.now()
	updated, err := g.maintenance.UpdateRequest(ctx, r)
	if err != nil {
		return failErr[*MaintenanceRequest](g.normalizeStorageError(ctx, err))
	}
	return ok(updated)
}

func (g *Guard) canMutateMaintenance(uc *UserContext, req *MaintenanceRequest) bool {
	if uc.IsElevated() {
		return true
	}
	switch uc.Role {
	case RoleTenant:
		return req.TenantID == uc.UserID && uc.RentsProperty(req.PropertyID)
	case RoleOwner:
		return uc.OwnsProperty(req.PropertyID)
	}
	return false
}
