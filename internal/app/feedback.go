package app

import (
	"context"

	"daily-spark-service/internal/domain"
)

// PlaceholderFeedback is returned while no scoring service is wired.
const PlaceholderFeedback = "Great response! Your answer shows good understanding of the topic and demonstrates clear communication skills."

// FeedbackProvider produces feedback, and optionally a score, for an answer.
type FeedbackProvider interface {
	Feedback(ctx context.Context, question domain.Question, answer string) (domain.Feedback, error)
}

// StaticFeedback always returns the same unscored text.
type StaticFeedback struct {
	Text string
}

func (f StaticFeedback) Feedback(context.Context, domain.Question, string) (domain.Feedback, error) {
	text := f.Text
	if text == "" {
		text = PlaceholderFeedback
	}
	return domain.Feedback{Text: text}, nil
}
