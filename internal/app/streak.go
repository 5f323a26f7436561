package app

import (
	"math"

	"daily-spark-service/internal/domain"
)

// AveragePolicy computes the next average score for an accepted answer.
type AveragePolicy interface {
	Next(prev domain.UserStats, score *float64) float64
}

// StepPolicy raises the average by a fixed step, capped at 100. It is the
// placeholder used when no scorer reports a score.
type StepPolicy struct {
	Step float64
}

func (p StepPolicy) Next(prev domain.UserStats, _ *float64) float64 {
	return clampScore(prev.AverageScore + p.Step)
}

// MeanPolicy keeps a running mean of reported scores and defers to Fallback
// for answers that came back unscored.
type MeanPolicy struct {
	Fallback AveragePolicy
}

func (p MeanPolicy) Next(prev domain.UserStats, score *float64) float64 {
	if ValidScore(score) == nil {
		if p.Fallback == nil {
			return prev.AverageScore
		}
		return p.Fallback.Next(prev, nil)
	}
	n := float64(prev.TotalAnswers)
	return clampScore((prev.AverageScore*n + clampScore(*score)) / (n + 1))
}

// ValidScore returns score, or nil when it is not a finite number.
func ValidScore(score *float64) *float64 {
	if score == nil || math.IsNaN(*score) || math.IsInf(*score, 0) {
		return nil
	}
	return score
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// StreakEngine computes statistics transitions. It holds no state.
type StreakEngine struct {
	average AveragePolicy
}

// DefaultScoreStep is the placeholder increment applied to unscored answers.
const DefaultScoreStep = 5

func NewStreakEngine(policy AveragePolicy) StreakEngine {
	if policy == nil {
		policy = MeanPolicy{Fallback: StepPolicy{Step: DefaultScoreStep}}
	}
	return StreakEngine{average: policy}
}

// Transition returns the snapshot after accepting an answer on today.
// When the last answer is already on or after today the snapshot is returned
// as is, so a duplicate call never double counts and the last answer date
// never moves backwards.
func (e StreakEngine) Transition(prev domain.UserStats, today domain.CalendarDate, score *float64) domain.UserStats {
	next := prev
	switch prev.Phase(today) {
	case domain.PhaseAnsweredToday:
		if next.LongestStreak < next.CurrentStreak {
			next.LongestStreak = next.CurrentStreak
		}
		return next
	case domain.PhaseAnsweredYesterday:
		next.CurrentStreak = prev.CurrentStreak + 1
	default:
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	next.AverageScore = e.average.Next(prev, score)
	next.TotalAnswers = prev.TotalAnswers + 1
	day := today
	next.LastAnswerDate = &day
	return next
}

// Display evaluates staleness for a reader: a lapsed streak shows as zero
// while the stored snapshot keeps its last value.
func (e StreakEngine) Display(stats domain.UserStats, today domain.CalendarDate) domain.StatsView {
	phase := stats.Phase(today)
	display := stats.CurrentStreak
	if phase == domain.PhaseLapsed || phase == domain.PhaseNeverAnswered {
		display = 0
	}
	return domain.StatsView{
		UserStats:      stats,
		Today:          today,
		Phase:          phase,
		DisplayStreak:  display,
		AnsweredToday:  phase == domain.PhaseAnsweredToday,
		RoundedAverage: int(math.Round(stats.AverageScore)),
	}
}

// Reconcile replays answers present in history but not yet counted in stats.
// History is newest first and written before stats, so the uncounted answers
// are the head entries dated after the last counted day. Dates are compared
// rather than counts so a history reset to empty does not hide later gaps.
func (e StreakEngine) Reconcile(stats domain.UserStats, history []domain.Answer, dayOf func(domain.Answer) domain.CalendarDate) (domain.UserStats, int) {
	uncounted := 0
	for _, answer := range history {
		if stats.LastAnswerDate != nil && !dayOf(answer).After(*stats.LastAnswerDate) {
			break
		}
		uncounted++
	}
	replayed := 0
	for i := uncounted - 1; i >= 0; i-- {
		next := e.Transition(stats, dayOf(history[i]), history[i].Score)
		if next.TotalAnswers != stats.TotalAnswers {
			replayed++
		}
		stats = next
	}
	return stats, replayed
}
