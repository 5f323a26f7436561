package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// RecordStore keeps per-user JSONB records in practice_records.
type RecordStore struct {
	pool *pgxpool.Pool
}

func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

func (s *RecordStore) Get(ctx context.Context, userID, name string) ([]byte, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM practice_records WHERE user_id=$1 AND name=$2`, userID, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get record: %w", err)
	}
	return raw, true, nil
}

func (s *RecordStore) Set(ctx context.Context, userID, name string, data []byte) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO practice_records (user_id, name, data, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (user_id, name) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		userID, name, string(data))
	if err != nil {
		return fmt.Errorf("set record: %w", err)
	}
	return nil
}

func (s *RecordStore) SetIfAbsent(ctx context.Context, userID, name string, data []byte) (bool, error) {
	tag, err := s.pool.Exec(ctx, `INSERT INTO practice_records (user_id, name, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (user_id, name) DO NOTHING`,
		userID, name, string(data))
	if err != nil {
		return false, fmt.Errorf("init record: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
