package cli

import (
	"context"
	"fmt"
	"time"

	"daily-spark-service/internal/app"
	"daily-spark-service/internal/clock"
	"daily-spark-service/internal/config"
	"daily-spark-service/internal/infra/memory"
	pgstore "daily-spark-service/internal/infra/postgres"
	redisstore "daily-spark-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// components is everything the commands need, built from one config.
type components struct {
	service     *app.PracticeService
	broadcaster *app.Broadcaster
	redis       *redis.Client
	pg          *pgxpool.Pool
	log         *logrus.Logger
}

func (c *components) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.pg != nil {
		c.pg.Close()
	}
}

// build picks Postgres, then Redis, then memory for user records, and
// Postgres or config for the question pool.
func build(ctx context.Context, cfg config.Config) (*components, error) {
	log := config.NewLogger(cfg)
	c := &components{log: log, broadcaster: app.NewBroadcaster()}

	clk, err := clock.LoadSystem(cfg.Practice.Timezone)
	if err != nil {
		return nil, fmt.Errorf("practice timezone: %w", err)
	}
	duplicates, err := app.ParseDuplicatePolicy(cfg.Practice.DuplicatePolicy)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		c.pg, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			c.Close()
			return nil, err
		}
	}

	var records app.RecordStore = memory.NewRecordStore()
	switch {
	case c.pg != nil:
		records = pgstore.NewRecordStore(c.pg)
	case c.redis != nil:
		records = redisstore.NewRecordStore(c.redis)
	default:
		log.Warn("no redis or postgres configured, user records are kept in memory")
	}

	var loader memory.PoolLoader = memory.NewStaticPoolLoader(configuredQuestions(cfg))
	if c.pg != nil {
		loader = pgstore.NewPoolLoader(c.pg)
	}
	pool := memory.NewPoolRepository(loader, config.Duration(cfg.Practice.PoolTTL, 10*time.Minute))

	// With Redis every instance publishes, and the relay started by the server
	// feeds the local broadcaster.
	var invalidator app.Invalidator = c.broadcaster
	if c.redis != nil {
		invalidator = redisstore.NewPublisher(c.redis)
	}

	c.service = app.NewPracticeService(
		app.NewStatsStore(records, log),
		pool,
		clk,
		app.WithEngine(app.NewStreakEngine(app.MeanPolicy{Fallback: app.StepPolicy{Step: cfg.Practice.Step()}})),
		app.WithFeedback(app.StaticFeedback{Text: cfg.Practice.Feedback}),
		app.WithInvalidator(invalidator),
		app.WithDuplicatePolicy(duplicates),
		app.WithRetry(cfg.Practice.Retries(), config.Duration(cfg.Practice.RetryInitialInterval, 0)),
		app.WithLogger(log),
	)
	return c, nil
}

func configuredQuestions(cfg config.Config) []string {
	if len(cfg.Practice.Questions) > 0 {
		return cfg.Practice.Questions
	}
	return memory.DefaultQuestions
}
