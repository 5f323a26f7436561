package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"daily-spark-service/internal/app"
	"daily-spark-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const invalidationPrefix = "practice:invalidate:"

// Publisher implements app.Invalidator over Redis pub/sub so every instance
// learns about a submission.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Invalidate(ctx context.Context, event domain.Invalidation) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode invalidation: %w", err)
	}
	return p.client.Publish(ctx, invalidationChannel(event.UserID), payload).Err()
}

// Relay feeds invalidations published by any instance into a local
// invalidator, usually the app.Broadcaster behind the websocket handler.
type Relay struct {
	client *redis.Client
	local  app.Invalidator
	log    logrus.FieldLogger
}

func NewRelay(client *redis.Client, local app.Invalidator, log logrus.FieldLogger) *Relay {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Relay{client: client, local: local, log: log}
}

// Run subscribes and forwards until ctx is done. ready, when non-nil, is
// closed once the subscription is confirmed.
func (r *Relay) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := r.client.PSubscribe(ctx, invalidationPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe invalidations: %w", err)
	}
	if ready != nil {
		close(ready)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event domain.Invalidation
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.log.WithError(err).WithField("channel", msg.Channel).Warn("dropping malformed invalidation")
				continue
			}
			if event.UserID == "" {
				event.UserID = strings.TrimPrefix(msg.Channel, invalidationPrefix)
			}
			if err := r.local.Invalidate(ctx, event); err != nil {
				r.log.WithError(err).WithField("user_id", event.UserID).Warn("local invalidation failed")
			}
		}
	}
}

func invalidationChannel(userID string) string {
	return invalidationPrefix + userID
}
