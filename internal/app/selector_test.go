package app

import (
	"errors"
	"testing"
	"time"

	"daily-spark-service/internal/domain"
)

var testPool = []string{"q0", "q1", "q2", "q3", "q4"}

func TestSelectQuestionIsDeterministic(t *testing.T) {
	day := domain.NewCalendarDate(2026, time.October, 14)
	first, err := SelectQuestion(day, testPool, time.UTC)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := SelectQuestion(day, testPool, time.UTC)
		if again != first {
			t.Fatalf("expected identical question, got %+v and %+v", first, again)
		}
	}
}

func TestSelectQuestionIndexAndID(t *testing.T) {
	cases := []struct {
		day  domain.CalendarDate
		want string
	}{
		// "2026-10-14" sums to 490.
		{domain.NewCalendarDate(2026, time.October, 14), "q0"},
		{domain.NewCalendarDate(2026, time.October, 15), "q1"},
		{domain.NewCalendarDate(2026, time.October, 16), "q2"},
	}
	for _, tc := range cases {
		q, err := SelectQuestion(tc.day, testPool, time.UTC)
		if err != nil {
			t.Fatalf("select %s: %v", tc.day, err)
		}
		if q.Text != tc.want {
			t.Fatalf("day %s: expected %s, got %s", tc.day, tc.want, q.Text)
		}
		if q.ID != "daily-"+tc.day.String() {
			t.Fatalf("day %s: unexpected id %s", tc.day, q.ID)
		}
	}
}

func TestSelectQuestionCreatedAtIsLocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	q, _ := SelectQuestion(domain.NewCalendarDate(2026, time.October, 14), testPool, loc)
	want := time.Date(2026, time.October, 14, 0, 0, 0, 0, loc)
	if !q.CreatedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, q.CreatedAt)
	}
}

func TestSelectQuestionEmptyPool(t *testing.T) {
	_, err := SelectQuestion(domain.NewCalendarDate(2026, time.October, 14), nil, time.UTC)
	if !errors.Is(err, domain.ErrEmptyPool) {
		t.Fatalf("expected empty pool error, got %v", err)
	}
}
