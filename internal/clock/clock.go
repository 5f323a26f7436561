// Package clock supplies the current time and calendar day to the practice
// engine so day boundaries can be simulated in tests.
package clock

import (
	"sync"
	"time"

	"daily-spark-service/internal/domain"
)

// Clock reports the current instant and the user's calendar day.
type Clock interface {
	Now() time.Time
	Today() domain.CalendarDate
	Location() *time.Location
}

// System reads the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock for loc (UTC when nil).
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

// LoadSystem resolves an IANA zone name; an empty name means UTC.
func LoadSystem(zone string) (System, error) {
	if zone == "" {
		return NewSystem(time.UTC), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return System{}, err
	}
	return NewSystem(loc), nil
}

func (c System) Now() time.Time { return time.Now().In(c.loc) }
func (c System) Today() domain.CalendarDate { return domain.DateOf(time.Now(), c.loc) }
func (c System) Location() *time.Location { return c.loc }

// Manual is a settable clock for tests.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual starts a manual clock at now, keeping now's location.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Manual) Today() domain.CalendarDate {
	now := c.Now()
	return domain.DateOf(now, now.Location())
}

func (c *Manual) Location() *time.Location { return c.Now().Location() }

// Set moves the clock to t.
func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// AddDays advances by n calendar days, keeping the local time of day.
func (c *Manual) AddDays(n int) {
	c.mu.Lock()
	c.now = c.now.AddDate(0, 0, n)
	c.mu.Unlock()
}
