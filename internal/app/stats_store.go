package app

import (
	"context"
	"encoding/json"
	"fmt"

	"daily-spark-service/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Record names used with the RecordStore.
const (
	RecordUserStats     = "userStats"
	RecordAnswerHistory = "answerHistory"
)

// RecordStore is the persistence port: named JSON records per user.
type RecordStore interface {
	Get(ctx context.Context, userID, name string) ([]byte, bool, error)
	Set(ctx context.Context, userID, name string, data []byte) error
	// SetIfAbsent writes data only when the record does not exist yet and
	// reports whether it did.
	SetIfAbsent(ctx context.Context, userID, name string, data []byte) (bool, error)
}

// StatsStore owns the persisted UserStats and answer history of each user.
type StatsStore struct {
	records RecordStore
	log     logrus.FieldLogger
	sf      singleflight.Group
}

func NewStatsStore(records RecordStore, log logrus.FieldLogger) *StatsStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StatsStore{records: records, log: log}
}

// Load returns the user's stats, creating the zero record on first read.
// Concurrent first reads share one initialisation; a record created by
// another process in between wins and is returned instead.
func (s *StatsStore) Load(ctx context.Context, userID string) (domain.UserStats, error) {
	v, err, _ := s.sf.Do(userID, func() (interface{}, error) {
		raw, ok, err := s.records.Get(ctx, userID, RecordUserStats)
		if err != nil {
			return domain.UserStats{}, &domain.PersistenceError{Op: "get", Record: RecordUserStats, Err: err}
		}
		if ok {
			return s.decodeStats(userID, raw), nil
		}

		defaults, _ := json.Marshal(domain.UserStats{})
		created, err := s.records.SetIfAbsent(ctx, userID, RecordUserStats, defaults)
		if err != nil {
			return domain.UserStats{}, &domain.PersistenceError{Op: "init", Record: RecordUserStats, Err: err}
		}
		if created {
			return domain.UserStats{}, nil
		}
		raw, ok, err = s.records.Get(ctx, userID, RecordUserStats)
		if err != nil {
			return domain.UserStats{}, &domain.PersistenceError{Op: "get", Record: RecordUserStats, Err: err}
		}
		if !ok {
			return domain.UserStats{}, nil
		}
		return s.decodeStats(userID, raw), nil
	})
	if err != nil {
		return domain.UserStats{}, err
	}
	return v.(domain.UserStats), nil
}

// Save overwrites the user's stats.
func (s *StatsStore) Save(ctx context.Context, userID string, stats domain.UserStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := s.records.Set(ctx, userID, RecordUserStats, data); err != nil {
		return &domain.PersistenceError{Op: "set", Record: RecordUserStats, Err: err}
	}
	return nil
}

// History returns the user's answers, newest first.
func (s *StatsStore) History(ctx context.Context, userID string) ([]domain.Answer, error) {
	raw, ok, err := s.records.Get(ctx, userID, RecordAnswerHistory)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get", Record: RecordAnswerHistory, Err: err}
	}
	if !ok {
		return []domain.Answer{}, nil
	}
	var answers []domain.Answer
	if err := json.Unmarshal(raw, &answers); err != nil {
		s.malformed(userID, RecordAnswerHistory, err)
		return []domain.Answer{}, nil
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	return answers, nil
}

// AppendAnswer puts answer at the head of the history. Appending the same
// answer twice in a row is a no-op, which keeps retried writes safe.
func (s *StatsStore) AppendAnswer(ctx context.Context, userID string, answer domain.Answer) error {
	history, err := s.History(ctx, userID)
	if err != nil {
		return err
	}
	if len(history) > 0 && history[0].ID == answer.ID {
		return nil
	}
	history = append([]domain.Answer{answer}, history...)
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.records.Set(ctx, userID, RecordAnswerHistory, data); err != nil {
		return &domain.PersistenceError{Op: "set", Record: RecordAnswerHistory, Err: err}
	}
	return nil
}

func (s *StatsStore) decodeStats(userID string, raw []byte) domain.UserStats {
	var stats domain.UserStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.malformed(userID, RecordUserStats, err)
		return domain.UserStats{}
	}
	if err := stats.Validate(); err != nil {
		s.malformed(userID, RecordUserStats, err)
		return domain.UserStats{}
	}
	return stats
}

func (s *StatsStore) malformed(userID, record string, cause error) {
	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"record":  record,
	}).WithError(fmt.Errorf("%w: %v", domain.ErrMalformedRecord, cause)).Warn("falling back to default record")
}
