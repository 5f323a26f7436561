package memory

import (
	"context"
	"testing"
)

func TestRecordStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	if _, ok, _ := store.Get(ctx, "u1", "userStats"); ok {
		t.Fatalf("expected no record yet")
	}

	created, err := store.SetIfAbsent(ctx, "u1", "userStats", []byte(`{"totalAnswers":0}`))
	if err != nil || !created {
		t.Fatalf("expected first SetIfAbsent to create, created=%v err=%v", created, err)
	}
	created, _ = store.SetIfAbsent(ctx, "u1", "userStats", []byte(`{"totalAnswers":9}`))
	if created {
		t.Fatalf("expected second SetIfAbsent to be refused")
	}

	if err := store.Set(ctx, "u1", "userStats", []byte(`{"totalAnswers":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, _ := store.Get(ctx, "u1", "userStats")
	if !ok || string(data) != `{"totalAnswers":1}` {
		t.Fatalf("unexpected record %q ok=%v", data, ok)
	}

	if _, ok, _ := store.Get(ctx, "u2", "userStats"); ok {
		t.Fatalf("expected users to be isolated")
	}
}
