package redis

import (
	"context"
	"testing"
	"time"

	"daily-spark-service/internal/app"
	"daily-spark-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRelayForwardsPublishedInvalidations(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	broadcaster := app.NewBroadcaster()
	updates, cancelSub := broadcaster.Subscribe("u1")
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- NewRelay(client, broadcaster, nil).Run(ctx, ready) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("relay stopped early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("relay never subscribed")
	}

	event := domain.Invalidation{UserID: "u1", Channels: domain.SubmissionChannels, At: time.Now()}
	if err := NewPublisher(client).Invalidate(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-updates:
		if got.UserID != "u1" || len(got.Channels) != 3 {
			t.Fatalf("unexpected invalidation %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected invalidation to be relayed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("relay returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("relay did not stop on cancel")
	}
}
