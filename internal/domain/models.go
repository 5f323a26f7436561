package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuestionIDPrefix prefixes the date in a daily question ID.
const QuestionIDPrefix = "daily-"

// Question is the prompt active for one calendar day.
type Question struct {
	ID        string    `json:"id"`
	Text      string    `json:"question"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuestionID returns the ID of the question active on date.
func QuestionID(date CalendarDate) string {
	return QuestionIDPrefix + date.String()
}

// QuestionDate recovers the day encoded in a daily question ID.
func QuestionDate(questionID string) (CalendarDate, bool) {
	raw, ok := strings.CutPrefix(questionID, QuestionIDPrefix)
	if !ok {
		return CalendarDate{}, false
	}
	d, err := ParseCalendarDate(raw)
	if err != nil {
		return CalendarDate{}, false
	}
	return d, true
}

// Answer is one accepted submission. Answers are never mutated.
type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	Text       string    `json:"text"`
	Feedback   string    `json:"feedback"`
	Score      *float64  `json:"score,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Feedback is what the feedback collaborator returns for an answer.
type Feedback struct {
	Text  string
	Score *float64
}

// UserStats is the aggregate snapshot of one user's practice.
type UserStats struct {
	CurrentStreak  int           `json:"currentStreak"`
	LongestStreak  int           `json:"longestStreak"`
	TotalAnswers   int           `json:"totalAnswers"`
	AverageScore   float64       `json:"averageScore"`
	LastAnswerDate *CalendarDate `json:"lastAnswerDate,omitempty"`
}

// Validate reports a snapshot whose fields are out of range.
func (s UserStats) Validate() error {
	switch {
	case s.CurrentStreak < 0 || s.LongestStreak < 0 || s.TotalAnswers < 0:
		return fmt.Errorf("negative counter in %+v", s)
	case s.LongestStreak < s.CurrentStreak:
		return fmt.Errorf("longest streak %d below current %d", s.LongestStreak, s.CurrentStreak)
	case s.AverageScore < 0 || s.AverageScore > 100:
		return fmt.Errorf("average score %v outside [0,100]", s.AverageScore)
	case s.TotalAnswers > 0 && s.LastAnswerDate == nil:
		return fmt.Errorf("%d answers without a last answer date", s.TotalAnswers)
	}
	return nil
}

// StreakPhase is derived from the last answer date; it is never stored.
type StreakPhase string

const (
	PhaseNeverAnswered     StreakPhase = "never_answered"
	PhaseAnsweredToday     StreakPhase = "answered_today"
	PhaseAnsweredYesterday StreakPhase = "answered_yesterday"
	PhaseLapsed            StreakPhase = "lapsed"
)

// Phase classifies the snapshot relative to today. A last answer date after
// today counts as answered today.
func (s UserStats) Phase(today CalendarDate) StreakPhase {
	if s.LastAnswerDate == nil || s.LastAnswerDate.IsZero() {
		return PhaseNeverAnswered
	}
	switch days := s.LastAnswerDate.DaysUntil(today); {
	case days <= 0:
		return PhaseAnsweredToday
	case days == 1:
		return PhaseAnsweredYesterday
	default:
		return PhaseLapsed
	}
}

// StatsView is the consumer-facing read of UserStats for a given day.
type StatsView struct {
	UserStats
	Today          CalendarDate `json:"today"`
	Phase          StreakPhase  `json:"phase"`
	DisplayStreak  int          `json:"displayStreak"`
	AnsweredToday  bool         `json:"answeredToday"`
	RoundedAverage int          `json:"roundedAverage"`
}

// Channel names a cached view that depends on submissions.
type Channel string

const (
	ChannelDailyQuestion Channel = "dailyQuestion"
	ChannelUserStats     Channel = "userStats"
	ChannelAnswerHistory Channel = "answerHistory"
)

// SubmissionChannels are invalidated after every accepted submission.
var SubmissionChannels = []Channel{ChannelDailyQuestion, ChannelUserStats, ChannelAnswerHistory}

// Invalidation tells subscribers which views of a user are stale.
type Invalidation struct {
	UserID   string    `json:"userId"`
	Channels []Channel `json:"channels"`
	At       time.Time `json:"at"`
}
