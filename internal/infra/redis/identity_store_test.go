package redis

import (
	"context"
	"testing"
	"time"

	"globetrotter/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestIdentityStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewIdentityStore(newClient(mr), "", 2*time.Hour)

	saved := domain.PersistedIdentity{
		Identity: domain.Identity{Username: "ann", CorrectCount: 2, TotalCount: 5},
		SavedAt:  time.UnixMilli(1700000000123),
	}
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("globetrotter_user") || !mr.Exists("globetrotter_timestamp") {
		t.Fatalf("expected both redis keys to be set")
	}
	if ttl := mr.TTL("globetrotter_user"); ttl != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %v", ttl)
	}

	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Identity != saved.Identity || !got.SavedAt.Equal(saved.SavedAt) {
		t.Fatalf("expected %+v, got %+v", saved, got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("globetrotter_user") || mr.Exists("globetrotter_timestamp") {
		t.Fatalf("expected redis keys to be removed")
	}
}

func TestIdentityStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewIdentityStore(newClient(mr), "client-1", time.Hour)
	_ = store.Save(ctx, domain.PersistedIdentity{Identity: domain.Identity{Username: "ann"}, SavedAt: time.Now()})

	if !mr.Exists("client-1:globetrotter_user") {
		t.Fatalf("expected namespaced key")
	}

	mr.FastForward(time.Hour + time.Second)
	if _, ok, err := store.Load(ctx); ok || err != nil {
		t.Fatalf("expected expired identity to be absent, ok=%v err=%v", ok, err)
	}
}

func TestIdentityStoreIgnoresCorruptValues(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set("globetrotter_user", "{not json")
	_ = mr.Set("globetrotter_timestamp", "123")

	store := NewIdentityStore(newClient(mr), "", time.Hour)
	if _, ok, err := store.Load(context.Background()); ok || err != nil {
		t.Fatalf("expected corrupt identity to be ignored, ok=%v err=%v", ok, err)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
