package propguard_test

import (
	"testing"
	"time"

	"github.com/estateops/propguard"
)

func TestMemoryContextCacheExpiry(t *testing.T) {
	cache := propguard.NewMemoryContextCache(5 * time.Minute)
	now := time.Now()
	cache.SetClock(func() time.Time { return now })

	uc := &propguard.UserContext{UserID: "u1", Role: propguard.RoleOwner, IsAuthenticated: true}
	cache.Put("u1", uc)

	got, ok := cache.Get("u1")
	if !ok || got.UserID != "u1" {
		t.Fatalf("expected fresh hit, got ok=%v", ok)
	}

	now = now.Add(4 * time.Minute)
	if _, ok := cache.Get("u1"); !ok {
		t.Fatalf("entry expired before its TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("u1"); ok {
		t.Fatalf("entry survived past its TTL")
	}
}

func TestMemoryContextCacheRefreshOnPut(t *testing.T) {
	cache := propguard.NewMemoryContextCache(time.Minute)
	now := time.Now()
	cache.SetClock(func() time.Time { return now })

	cache.Put("u1", &propguard.UserContext{UserID: "u1"})
	now = now.Add(50 * time.Second)
	cache.Put("u1", &propguard.UserContext{UserID: "u1"})
	now = now.Add(50 * time.Second)

	if _, ok := cache.Get("u1"); !ok {
		t.Fatalf("rewrite should have reset the TTL")
	}
}

func TestMemoryContextCacheInvalidate(t *testing.T) {
	cache := propguard.NewMemoryContextCache(time.Minute)
	cache.Put("u1", &propguard.UserContext{UserID: "u1"})
	cache.Put("u2", &propguard.UserContext{UserID: "u2"})

	cache.Invalidate("u1")
	if _, ok := cache.Get("u1"); ok {
		t.Fatalf("u1 should be gone")
	}
	if _, ok := cache.Get("u2"); !ok {
		t.Fatalf("u2 should survive a single invalidation")
	}

	cache.InvalidateAll()
	if _, ok := cache.Get("u2"); ok {
		t.Fatalf("u2 should be gone after InvalidateAll")
	}
}

func TestRistrettoContextCacheRoundtrip(t *testing.T) {
	cache, err := propguard.NewRistrettoContextCache(0, 0, 0, time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	uc := &propguard.UserContext{UserID: "u1", Role: propguard.RoleTenant, IsAuthenticated: true}
	cache.Put("u1", uc)

	got, ok := cache.Get("u1")
	if !ok || got.UserID != "u1" || got.Role != propguard.RoleTenant {
		t.Fatalf("roundtrip failed: ok=%v got=%+v", ok, got)
	}

	cache.Invalidate("u1")
	if _, ok := cache.Get("u1"); ok {
		t.Fatalf("u1 should be gone after Invalidate")
	}
}
