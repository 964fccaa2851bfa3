package propguard

import "context"

// ============================================================================
// GUARDED OPERATIONS — BIDS
// ============================================================================

// ListBids returns bids visible to the caller. The rule table scopes owners
// to bids on their properties; buyers are narrowed to their own bids here,
// at the operation level, because buyer restrictions are per-operation
// rather than table-driven.
func (g *Guard) ListBids(ctx context.Context, extra map[string]any) Response[[]*Bid] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[[]*Bid](aerr)
	}
	f := g.scope.Build(uc, CollectionBids)
	if uc.Role == RoleBuyer {
		f = FieldEquals("buyer_id", uc.UserID)
	}
	if f.YieldsNoRows() {
		return okCount([]*Bid{}, 0)
	}
	rows, err := g.bids.ListBids(ctx, f, extra)
	if err != nil {
		return failErr[[]*Bid](g.normalizeStorageError(ctx, err))
	}
	return okCount(rows, len(rows))
}

// CreateBid places a bid on a property; buyers only.
func (g *Guard) CreateBid(ctx context.Context, b *Bid) Response[*Bid] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Bid](aerr)
	}
	if dec := CanPerform(uc, ActionCreateBid, b.PropertyID, g.log); !dec.Allowed {
		return failErr[*Bid](accessDenied(dec.Reason))
	}
	if uc.Role == RoleBuyer {
		b.BuyerID = uc.UserID
	}
	b.Status = "pending"
	b.CreatedAt = g.now()
	b.UpdatedAt = b.CreatedAt
	created, err := g.bids.CreateBid(ctx, b)
	if err != nil {
		return failErr[*Bid](g.normalizeStorageError(ctx, err))
	}
	if prop, perr := g.properties.GetProperty(ctx, created.PropertyID); perr == nil {
		g.notify(ctx, &Notification{
			RecipientID:       prop.OwnerID,
			SenderID:          uc.UserID,
			Type:              "bid_placed",
			Title:             "New bid on your property",
			Message:           "A buyer placed a bid on " + prop.Name + ".",
			Priority:          "normal",
			RelatedEntityType: CollectionBids,
			RelatedEntityID:   created.ID,
		})
	}
	return ok(created)
}

// AcceptBid marks a pending bid accepted; property owner or elevated roles.
// The bidder is notified best-effort.
func (g *Guard) AcceptBid(ctx context.Context, id string) Response[*Bid] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*Bid](aerr)
	}
	b, err := g.bids.GetBid(ctx, id)
	if err != nil {
		return failErr[*Bid](g.normalizeStorageError(ctx, err))
	}
	if dec := CanPerform(uc, ActionAcceptBid, b.PropertyID, g.log); !dec.Allowed {
		return failErr[*Bid](accessDenied(dec.Reason))
	}
	if b.Status != "pending" {
		return fail[*Bid](CodeQueryError, "only pending bids can be accepted")
	}
	b.Status = "accepted"
	b.UpdatedAt = g.now()
	updated, err := g.bids.UpdateBid(ctx, b)
	if err != nil {
		return failErr[*Bid](g.normalizeStorageError(ctx, err))
	}
	g.notify(ctx, &Notification{
		RecipientID:       updated.BuyerID,
		SenderID:          uc.UserID,
		Type:              "bid_accepted",
		Title:             "Bid accepted",
		Message:           "Your bid was accepted by the property owner.",
		Priority:          "high",
		RelatedEntityType: CollectionBids,
		RelatedEntityID:   updated.ID,
	})
	return ok(updated)
}
