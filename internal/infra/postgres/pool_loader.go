package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// PoolLoader reads the ordered question pool from question_pool.
type PoolLoader struct {
	pool *pgxpool.Pool
}

func NewPoolLoader(pool *pgxpool.Pool) *PoolLoader {
	return &PoolLoader{pool: pool}
}

func (l *PoolLoader) LoadPool(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT text FROM question_pool ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	defer rows.Close()

	var questions []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	return questions, nil
}

// SeedPool replaces the stored pool with questions, keeping their order.
func SeedPool(ctx context.Context, pool *pgxpool.Pool, questions []string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("seed question pool: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM question_pool`); err != nil {
		return fmt.Errorf("clear question pool: %w", err)
	}
	for i, text := range questions {
		if _, err := tx.Exec(ctx, `INSERT INTO question_pool (position, text) VALUES ($1, $2)`, i, text); err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}
	return tx.Commit(ctx)
}
