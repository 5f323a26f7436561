package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daily-spark-service/internal/clock"
	"daily-spark-service/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DuplicatePolicy decides what a second submission on the same day gets.
type DuplicatePolicy string

const (
	// DuplicateReject answers ErrAlreadyAnswered.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateReturnExisting hands back the stored answer without mutating.
	DuplicateReturnExisting DuplicatePolicy = "return_existing"
)

// ParseDuplicatePolicy maps a config value to a policy; empty means reject.
func ParseDuplicatePolicy(raw string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DuplicateReject:
		return DuplicateReject, nil
	case DuplicateReturnExisting:
		return DuplicateReturnExisting, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q", raw)
}

// PracticeService contains the daily question use cases. It keeps no user
// state of its own; StatsStore owns everything persisted.
type PracticeService struct {
	stats       *StatsStore
	pool        PoolRepository
	clock       clock.Clock
	engine      StreakEngine
	feedback    FeedbackProvider
	invalidator Invalidator
	duplicates  DuplicatePolicy
	log         logrus.FieldLogger
	locks       *userLocks

	retryAttempts uint64
	retryInitial  time.Duration
}

// Option customises a PracticeService.
type Option func(*PracticeService)

func WithEngine(engine StreakEngine) Option {
	return func(s *PracticeService) { s.engine = engine }
}

func WithFeedback(provider FeedbackProvider) Option {
	return func(s *PracticeService) { s.feedback = provider }
}

func WithInvalidator(invalidator Invalidator) Option {
	return func(s *PracticeService) { s.invalidator = invalidator }
}

func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(s *PracticeService) { s.duplicates = policy }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *PracticeService) { s.log = log }
}

// WithRetry sets how many times a failed write is retried and the first delay.
func WithRetry(attempts int, initial time.Duration) Option {
	return func(s *PracticeService) {
		if attempts >= 0 {
			s.retryAttempts = uint64(attempts)
		}
		if initial > 0 {
			s.retryInitial = initial
		}
	}
}

func NewPracticeService(stats *StatsStore, pool PoolRepository, clk clock.Clock, opts ...Option) *PracticeService {
	s := &PracticeService{
		stats:         stats,
		pool:          pool,
		clock:         clk,
		engine:        NewStreakEngine(nil),
		feedback:      StaticFeedback{},
		invalidator:   nopInvalidator{},
		duplicates:    DuplicateReject,
		log:           logrus.StandardLogger(),
		locks:         newUserLocks(),
		retryAttempts: 3,
		retryInitial:  50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DailyQuestion returns the question active today.
func (s *PracticeService) DailyQuestion(ctx context.Context) (domain.Question, error) {
	return s.questionFor(ctx, s.clock.Today())
}

// Stats returns the user's stats as they should be displayed today.
func (s *PracticeService) Stats(ctx context.Context, userID string) (domain.StatsView, error) {
	stats, _, _, err := s.state(ctx, userID)
	if err != nil {
		return domain.StatsView{}, err
	}
	return s.engine.Display(stats, s.clock.Today()), nil
}

// History returns the user's answers, newest first.
func (s *PracticeService) History(ctx context.Context, userID string) ([]domain.Answer, error) {
	var history []domain.Answer
	err := s.retry(ctx, func() error {
		var err error
		history, err = s.stats.History(ctx, userID)
		return err
	})
	return history, err
}

// Submit records the answer to today's question and advances the streak.
// Submissions of one user are serialised; a second one on the same day is
// handled by the duplicate policy and never counted twice.
func (s *PracticeService) Submit(ctx context.Context, userID, questionID, answerText string) (domain.Answer, error) {
	text := strings.TrimSpace(answerText)
	if text == "" {
		return domain.Answer{}, domain.ErrEmptyAnswer
	}

	unlock, err := s.locks.acquire(ctx, userID)
	if err != nil {
		return domain.Answer{}, err
	}
	defer unlock()

	today := s.clock.Today()
	question, err := s.questionFor(ctx, today)
	if err != nil {
		return domain.Answer{}, err
	}
	if questionID != question.ID {
		return domain.Answer{}, domain.ErrQuestionNotActive
	}

	log := s.log.WithFields(logrus.Fields{"user_id": userID, "question_id": question.ID})

	stats, history, replayed, err := s.state(ctx, userID)
	if err != nil {
		return domain.Answer{}, err
	}
	if stats.Phase(today) == domain.PhaseAnsweredToday {
		if replayed > 0 {
			s.persistReconciled(ctx, log, userID, stats)
		}
		return s.duplicate(log, question, history)
	}

	feedback, err := s.feedback.Feedback(ctx, question, text)
	if err != nil {
		log.WithError(err).Warn("feedback provider failed, using placeholder")
		feedback = domain.Feedback{Text: PlaceholderFeedback}
	}
	if feedback.Score != nil && ValidScore(feedback.Score) == nil {
		log.WithField("score", fmt.Sprint(*feedback.Score)).Warn("discarding non-finite feedback score")
		feedback.Score = nil
	}

	answer := domain.Answer{
		ID:         uuid.NewString(),
		QuestionID: question.ID,
		Text:       text,
		Feedback:   feedback.Text,
		Score:      feedback.Score,
		CreatedAt:  s.clock.Now(),
	}

	// The answer goes first: an answer without counted stats is reconciled on
	// the next read, stats counting a missing answer could not be.
	if err := s.retry(ctx, func() error { return s.stats.AppendAnswer(ctx, userID, answer) }); err != nil {
		log.WithError(err).Error("append answer failed")
		return domain.Answer{}, err
	}
	next := s.engine.Transition(stats, today, answer.Score)
	if err := s.retry(ctx, func() error { return s.stats.Save(ctx, userID, next) }); err != nil {
		log.WithError(err).Error("save stats failed, answer kept for reconciliation")
		return domain.Answer{}, err
	}

	log.WithFields(logrus.Fields{
		"current_streak": next.CurrentStreak,
		"total_answers":  next.TotalAnswers,
	}).Info("answer accepted")

	event := domain.Invalidation{UserID: userID, Channels: domain.SubmissionChannels, At: s.clock.Now()}
	if err := s.invalidator.Invalidate(ctx, event); err != nil {
		log.WithError(err).Warn("cache invalidation failed")
	}
	return answer, nil
}

func (s *PracticeService) questionFor(ctx context.Context, day domain.CalendarDate) (domain.Question, error) {
	pool, err := s.pool.GetPool(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	return SelectQuestion(day, pool, s.clock.Location())
}

// state loads stats and history and folds in answers the stats missed.
func (s *PracticeService) state(ctx context.Context, userID string) (domain.UserStats, []domain.Answer, int, error) {
	var stats domain.UserStats
	if err := s.retry(ctx, func() error {
		var err error
		stats, err = s.stats.Load(ctx, userID)
		return err
	}); err != nil {
		return domain.UserStats{}, nil, 0, err
	}
	history, err := s.History(ctx, userID)
	if err != nil {
		return domain.UserStats{}, nil, 0, err
	}
	reconciled, replayed := s.engine.Reconcile(stats, history, s.answerDay)
	if replayed > 0 {
		s.log.WithFields(logrus.Fields{"user_id": userID, "replayed": replayed}).Warn("stats behind answer history, reconciled")
	}
	return reconciled, history, replayed, nil
}

func (s *PracticeService) persistReconciled(ctx context.Context, log logrus.FieldLogger, userID string, stats domain.UserStats) {
	if err := s.retry(ctx, func() error { return s.stats.Save(ctx, userID, stats) }); err != nil {
		log.WithError(err).Warn("saving reconciled stats failed")
	}
}

func (s *PracticeService) duplicate(log logrus.FieldLogger, question domain.Question, history []domain.Answer) (domain.Answer, error) {
	if s.duplicates == DuplicateReturnExisting {
		for _, answer := range history {
			if answer.QuestionID == question.ID {
				log.Debug("duplicate submission, returning stored answer")
				return answer, nil
			}
		}
	}
	return domain.Answer{}, domain.ErrAlreadyAnswered
}

func (s *PracticeService) answerDay(answer domain.Answer) domain.CalendarDate {
	if day, ok := domain.QuestionDate(answer.QuestionID); ok {
		return day
	}
	return domain.DateOf(answer.CreatedAt, s.clock.Location())
}

// retry repeats op while it fails with a persistence error.
func (s *PracticeService) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInitial
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.retryAttempts), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, domain.ErrPersistence) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context, domain.Invalidation) error { return nil }
