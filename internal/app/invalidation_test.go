package app

import (
	"context"
	"testing"

	"daily-spark-service/internal/domain"
)

func TestBroadcasterDeliversPerUser(t *testing.T) {
	b := NewBroadcaster()
	u1, cancel1 := b.Subscribe("u1")
	defer cancel1()
	u2, cancel2 := b.Subscribe("u2")
	defer cancel2()

	_ = b.Invalidate(context.Background(), domain.Invalidation{UserID: "u1", Channels: domain.SubmissionChannels})

	select {
	case event := <-u1:
		if event.UserID != "u1" {
			t.Fatalf("unexpected event %+v", event)
		}
	default:
		t.Fatalf("expected u1 to be notified")
	}
	select {
	case event := <-u2:
		t.Fatalf("u2 must not be notified, got %+v", event)
	default:
	}
}

func TestBroadcasterDropsStaleEventsForSlowSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe("u1")
	defer cancel()

	for i := 0; i < 20; i++ {
		_ = b.Invalidate(context.Background(), domain.Invalidation{UserID: "u1", Channels: []domain.Channel{domain.ChannelUserStats}})
	}
	if got := len(ch); got != cap(ch) {
		t.Fatalf("expected a full buffer, got %d of %d", got, cap(ch))
	}
}

func TestBroadcasterCancelClosesAndForgets(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe("u1")
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if _, ok := b.subscribers["u1"]; ok {
		t.Fatalf("expected the user to be forgotten")
	}
	if err := b.Invalidate(context.Background(), domain.Invalidation{UserID: "u1"}); err != nil {
		t.Fatalf("invalidate after cancel: %v", err)
	}
}
