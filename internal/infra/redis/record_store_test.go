package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRecordStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewRecordStore(newClient(mr))
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "u1", "userStats"); err != nil || ok {
		t.Fatalf("expected missing record, ok=%v err=%v", ok, err)
	}

	created, err := store.SetIfAbsent(ctx, "u1", "userStats", []byte(`{"totalAnswers":0}`))
	if err != nil || !created {
		t.Fatalf("expected record created, created=%v err=%v", created, err)
	}
	created, err = store.SetIfAbsent(ctx, "u1", "userStats", []byte(`{"totalAnswers":7}`))
	if err != nil || created {
		t.Fatalf("expected existing record kept, created=%v err=%v", created, err)
	}

	if err := store.Set(ctx, "u1", "answerHistory", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("practice:user:u1:answerHistory") {
		t.Fatalf("expected history key in redis")
	}
	got, err := mr.Get("practice:user:u1:userStats")
	if err != nil || got != `{"totalAnswers":0}` {
		t.Fatalf("unexpected stats record %q err=%v", got, err)
	}
	if ttl := mr.TTL("practice:user:u1:userStats"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}
}

func TestRecordStoreSurfacesConnectionErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	store := NewRecordStore(newClient(mr))
	mr.Close()

	if _, _, err := store.Get(context.Background(), "u1", "userStats"); err == nil {
		t.Fatalf("expected error from closed server")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
}
