package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"daily-spark-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// DefaultQuestions is the built-in pool used when none is configured.
var DefaultQuestions = []string{
	"Describe a challenging situation you faced at work and how you overcame it. What did you learn from this experience?",
	"What are your career goals for the next five years, and what steps are you taking to achieve them?",
	"How do you handle stress and pressure in a professional environment? Provide specific examples.",
	"Describe a time when you had to work with a difficult colleague or client. How did you manage the situation?",
	"What skills do you think are most important for success in your field, and how are you developing them?",
}

// PoolLoader fetches the ordered question pool from a backing store.
type PoolLoader interface {
	LoadPool(ctx context.Context) ([]string, error)
}

// PoolRepository caches the pool with a TTL so selection does not hit the
// backing store on every request.
type PoolRepository struct {
	loader PoolLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	pool      []string
	expiresAt time.Time
}

func NewPoolRepository(loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PoolRepository) GetPool(ctx context.Context) ([]string, error) {
	if pool, ok := r.cached(r.clock()); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do("pool", func() (interface{}, error) {
		now := r.clock()
		if pool, ok := r.cached(now); ok {
			return pool, nil
		}

		pool, err := r.loader.LoadPool(ctx)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return nil, domain.ErrEmptyPool
		}

		r.mu.Lock()
		r.pool = pool
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (r *PoolRepository) cached(now time.Time) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pool == nil || !r.expiresAt.After(now) {
		return nil, false
	}
	return r.pool, true
}

func (r *PoolRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPoolLoader serves a fixed pool (config or DefaultQuestions).
type StaticPoolLoader struct {
	questions []string
}

func NewStaticPoolLoader(questions []string) *StaticPoolLoader {
	return &StaticPoolLoader{questions: append([]string(nil), questions...)}
}

func (l *StaticPoolLoader) LoadPool(context.Context) ([]string, error) {
	if len(l.questions) == 0 {
		return nil, domain.ErrEmptyPool
	}
	return append([]string(nil), l.questions...), nil
}
