package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUserLocksSerialisePerUser(t *testing.T) {
	locks := newUserLocks()
	unlock, err := locks.acquire(context.Background(), "u1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Another user is not blocked.
	other, err := locks.acquire(context.Background(), "u2")
	if err != nil {
		t.Fatalf("acquire other user: %v", err)
	}
	other()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locks.acquire(ctx, "u1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the second acquire to wait until the deadline, got %v", err)
	}

	unlock()
	unlock()
	again, err := locks.acquire(context.Background(), "u1")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	if len(locks.locks) != 0 {
		t.Fatalf("expected lock table to be empty, got %d entries", len(locks.locks))
	}
}
