package memory

import (
	"context"
	"sync"
)

// RecordStore is an in-memory implementation of app.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]map[string][]byte
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]map[string][]byte),
	}
}

func (s *RecordStore) Get(_ context.Context, userID, name string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.records[userID][name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *RecordStore) Set(_ context.Context, userID, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userLocked(userID)[name] = append([]byte(nil), data...)
	return nil
}

func (s *RecordStore) SetIfAbsent(_ context.Context, userID, name string, data []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.userLocked(userID)
	if _, ok := user[name]; ok {
		return false, nil
	}
	user[name] = append([]byte(nil), data...)
	return true, nil
}

func (s *RecordStore) userLocked(userID string) map[string][]byte {
	user, ok := s.records[userID]
	if !ok {
		user = make(map[string][]byte)
		s.records[userID] = user
	}
	return user
}
