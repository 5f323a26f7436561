package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RecordStore keeps per-user records as plain string keys:
//
//	practice:user:{userID}:{name} -> JSON
//
// Records have no expiry; they are the user's state, not a cache.
type RecordStore struct {
	client *redis.Client
}

func NewRecordStore(client *redis.Client) *RecordStore {
	return &RecordStore{client: client}
}

func (s *RecordStore) Get(ctx context.Context, userID, name string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, recordKey(userID, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RecordStore) Set(ctx context.Context, userID, name string, data []byte) error {
	return s.client.Set(ctx, recordKey(userID, name), data, 0).Err()
}

// SetIfAbsent relies on SETNX so racing first reads on several instances
// still produce one record.
func (s *RecordStore) SetIfAbsent(ctx context.Context, userID, name string, data []byte) (bool, error) {
	return s.client.SetNX(ctx, recordKey(userID, name), data, 0).Result()
}

func recordKey(userID, name string) string {
	return "practice:user:" + userID + ":" + name
}
