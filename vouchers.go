package propguard

import "context"

// ============================================================================
// GUARDED OPERATIONS — VOUCHERS
// ============================================================================

// ListVouchers returns vouchers visible to the caller.
func (g *Guard) ListVouchers(ctx context.Context, extra map[string]any) Response[[]*Voucher] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[[]*Voucher](aerr)
	}
	f := g.scope.Build(uc, CollectionVouchers)
	if g.emptyScope(uc, f, CollectionVouchers) {
		return okCount([]*Voucher{}, 0)
	}
	rows, err := g.vouchers.ListVouchers(ctx, f, extra)
	if err != nil {
		return failErr[[]*Voucher](g.normalizeStorageError(ctx, err))
	}
	return okCount(rows, len(rows))
}

// CreateVoucher inserts a voucher in draft status regardless of the caller's
// input; posting is a separate transition.
func (g *Guard) CreateVoucher(ctx context.Context, v *Voucher) Response[*Voucher] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Voucher](aerr)
	}
	if dec := CanPerform(uc, ActionCreateVoucher, v.PropertyID, g.log); !dec.Allowed {
		return failErr[*Voucher](accessDenied(dec.Reason))
	}
	v.Status = VoucherDraft
	v.PostedAt = nil
	v.CancelledAt = nil
	v.CreatedAt = g.now()
	v.UpdatedAt = v.CreatedAt
	created, err := g.vouchers.CreateVoucher(ctx, v)
	if err != nil {
		return failErr[*Voucher](g.normalizeStorageError(ctx, err))
	}
	return ok(created)
}

// PostVoucher moves draft -> posted, stamping the posted timestamp. The
// lifecycle is one-directional; posting anything but a draft fails.
func (g *Guard) PostVoucher(ctx context.Context, id string) Response[*Voucher] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Voucher](aerr)
	}
	v, err := g.vouchers.GetVoucher(ctx, id)
	if err != nil {
		return failErr[*Voucher](g.normalizeStorageError(ctx, err))
	}
	if dec := CanPerform(uc, ActionPostVoucher, v.PropertyID, g.log); !dec.Allowed {
		return failErr[*Voucher](accessDenied(dec.Reason))
	}
	if v.Status != VoucherDraft {
		return fail[*Voucher](CodeQueryError, "only draft vouchers can be posted")
	}
	now := g.now()
	v.Status = VoucherPosted
	v.PostedAt = &now
	v.UpdatedAt = now
	updated, err := g.vouchers.UpdateVoucher(ctx, v)
	if err != nil {
		return failErr[*Voucher](g.normalizeStorageError(ctx, err))
	}
	return ok(updated)
}

// CancelVoucher moves draft or posted -> cancelled, stamping the cancellation
// timestamp and optional notes. Cancelled vouchers never transition again.
func (g *Guard) CancelVoucher(ctx context.Context, id, notes string) Response[*Voucher] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Voucher](aerr)
	}
	v, err := g.vouchers.GetVoucher(ctx, id)
	if err != nil {
		return failErr[*Voucher](g.normalizeStorageError(ctx, err))
	}
	if dec := CanPerform(uc, ActionCancelVoucher, v.PropertyID, g.log); !dec.Allowed {
		return failErr[*Voucher](accessDenied(dec.Reason))
	}
	if v.Status == VoucherCancelled {
		return fail[*Voucher](CodeQueryError, "voucher is already cancelled")
	}
	now := g.now()
	v.Status = VoucherCancelled
	v.CancelledAt = &now
	v.CancelNotes = notes
	v.UpdatedAt = now
	updated, err := g.vouchers.UpdateVoucher(ctx, v)
	if err != nil {
		return failErr[*Voucher](g.normalizeStorageError(ctx, err))
	}
	return ok(updated)
}

// DeleteVoucher removes a voucher; deletion is only permitted while the
// voucher is still a draft.
func (g *Guard) DeleteVoucher(ctx context.Context, id string) Response[bool] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[bool](aerr)
	}
	v, err := g.vouchers.GetVoucher(ctx, id)
	if err != nil {
		return failErr[bool](g.normalizeStorageError(ctx, err))
	}
	if dec := CanPerform(uc, ActionCancelVoucher, v.PropertyID, g.log); !dec.Allowed {
		return failErr[bool](accessDenied(dec.Reason))
	}
	if v.Status != VoucherDraft {
		return failErr[bool](accessDenied("only draft vouchers can be deleted"))
	}
	if err := g.vouchers.DeleteVoucher(ctx, id); err != nil {
		return failErr[bool](g.normalizeStorageError(ctx, err))
	}
	return ok(true)
}
