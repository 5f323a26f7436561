package app

import (
	"context"
	"sync"

	"daily-spark-service/internal/domain"
)

// Invalidator is told which views of a user went stale after a submission.
type Invalidator interface {
	Invalidate(ctx context.Context, event domain.Invalidation) error
}

// Broadcaster fans invalidations out to in-process subscribers per user.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Invalidation]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[string]map[chan domain.Invalidation]struct{})}
}

// Subscribe returns a channel of invalidations for userID.
// The caller must invoke the returned cancel function to avoid leaks.
func (b *Broadcaster) Subscribe(userID string) (<-chan domain.Invalidation, func()) {
	ch := make(chan domain.Invalidation, 8)

	b.mu.Lock()
	subs, ok := b.subscribers[userID]
	if !ok {
		subs = make(map[chan domain.Invalidation]struct{})
		b.subscribers[userID] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[userID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(b.subscribers, userID)
		}
	}
	return ch, cancel
}

// Invalidate delivers event to every subscriber of its user. A full
// subscriber loses its oldest pending event rather than blocking.
func (b *Broadcaster) Invalidate(_ context.Context, event domain.Invalidation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[event.UserID] {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
	return nil
}
