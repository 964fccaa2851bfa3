package propguard_test

import (
	"context"
	"testing"

	"github.com/estateops/propguard"
)

func TestCreateBidBuyersOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	seedWorld(t, env)
	ctx := context.Background()

	env.session.signIn("buyer-1")
	created := env.guard.CreateBid(ctx, &propguard.Bid{
		PropertyID: "p1", BuyerID: "someone-else", Amount: 250000,
		Status: "accepted", // caller input must be ignored
	})
	if !created.OK() {
		t.Fatalf("create: %v", created.Error)
	}
	if created.Data.BuyerID != "buyer-1" || created.Data.Status != "pending" {
		t.Fatalf("bid not normalized: %+v", created.Data)
	}

	// The property owner hears about it.
	rows, err := env.notifications.ListNotifications(ctx,
		propguard.FieldEquals("recipient_id", "owner-1"), nil)
	if err != nil || len(rows) != 1 || rows[0].Type != "bid_placed" {
		t.Fatalf("expected bid_placed notification, got %v err=%v", rows, err)
	}

	env.session.signIn("tenant-1")
	denied := env.guard.CreateBid(ctx, &propguard.Bid{PropertyID: "p1", Amount: 100})
	if denied.OK() || denied.Error.Code != propguard.CodeAccessDenied {
		t.Fatalf("non-buyer bid must be denied, got %v", denied.Error)
	}
}

func TestListBidsPerRole(t *testing.T) {
	env := newTestEnv(t, nil)
	seedWorld(t, env)
	ctx := context.Background()
	env.addProfile(t, "buyer-2", propguard.RoleBuyer)

	for _, b := range []*propguard.Bid{
		{ID: "b1", PropertyID: "p1", BuyerID: "buyer-1", Amount: 100, Status: "pending"},
		{ID: "b2", PropertyID: "p3", BuyerID: "buyer-2", Amount: 200, Status: "pending"},
	} {
		if _, err := env.bids.CreateBid(ctx, b); err != nil {
			t.Fatalf("seed bid: %v", err)
		}
	}

	env.session.signIn("buyer-1")
	resp := env.guard.ListBids(ctx, nil)
	if !resp.OK() || resp.Count != 1 || resp.Data[0].ID != "b1" {
		t.Fatalf("buyer sees own bids only: count=%d err=%v", resp.Count, resp.Error)
	}

	env.session.signIn("owner-1")
	resp = env.guard.ListBids(ctx, nil)
	if !resp.OK() || resp.Count != 1 || resp.Data[0].PropertyID != "p1" {
		t.Fatalf("owner sees bids on own properties: count=%d err=%v", resp.Count, resp.Error)
	}

	env.session.signIn("tenant-1")
	resp = env.guard.ListBids(ctx, nil)
	if !resp.OK() || resp.Count != 0 || resp.Data == nil {
		t.Fatalf("tenant bid list must be empty success, got count=%d err=%v", resp.Count, resp.Error)
	}
}

func TestAcceptBidOwnerOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	seedWorld(t, env)
	ctx := context.Background()

	if _, err := env.bids.CreateBid(ctx, &propguard.Bid{
		ID: "b1", PropertyID: "p1", BuyerID: "buyer-1", Amount: 100, Status: "pending",
	}); err != nil {
		t.Fatalf("seed bid: %v", err)
	}

	env.session.signIn("owner-2")
	denied := env.guard.AcceptBid(ctx, "b1")
	if denied.OK() || denied.Error.Code != propguard.CodeAccessDenied {
		t.Fatalf("foreign owner must be denied, got %v", denied.Error)
	}

	env.session.signIn("owner-1")
	accepted := env.guard.AcceptBid(ctx, "b1")
	if !accepted.OK() || accepted.Data.Status != "accepted" {
		t.Fatalf("accept failed: %v", accepted.Error)
	}

	again := env.guard.AcceptBid(ctx, "b1")
	if again.OK() || again.Error.Code != propguard.CodeQueryError {
		t.Fatalf("re-accept must fail, got %v", again.Error)
	}

	// The bidder is notified.
	rows, err := env.notifications.ListNotifications(ctx,
		propguard.FieldEquals("recipient_id", "buyer-1"), nil)
	if err != nil || len(rows) != 1 || rows[0].Type != "bid_accepted" {
		t.Fatalf("expected bid_accepted notification, got %v err=%v", rows, err)
	}
}
