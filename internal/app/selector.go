package app

import (
	"context"
	"time"

	"daily-spark-service/internal/domain"
)

// PoolRepository supplies the ordered question pool.
type PoolRepository interface {
	GetPool(ctx context.Context) ([]string, error)
}

// SelectQuestion maps a calendar day to one prompt of the pool. The index is
// the sum of the byte codes of the canonical date string modulo the pool size,
// so the same day always gets the same prompt without any stored state.
func SelectQuestion(date domain.CalendarDate, pool []string, loc *time.Location) (domain.Question, error) {
	if len(pool) == 0 {
		return domain.Question{}, domain.ErrEmptyPool
	}
	sum := 0
	for _, c := range []byte(date.String()) {
		sum += int(c)
	}
	return domain.Question{
		ID:        domain.QuestionID(date),
		Text:      pool[sum%len(pool)],
		CreatedAt: date.Start(loc),
	}, nil
}
