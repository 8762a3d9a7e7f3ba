// Package calendar pins every notion of "today" to a single configured time zone.
//
// Days travel through the application as YYYY-MM-DD strings so they compare
// lexically and never pick up a time-of-day or offset on their way to storage.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const Layout = "2006-01-02"

var ErrInvalidDay = errors.New("invalid date: expected YYYY-MM-DD")

type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New returns a calendar for the named IANA zone. An empty name means UTC.
func New(zone string) (*Calendar, error) {
	if zone == "" {
		zone = "UTC"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", zone, err)
	}
	return &Calendar{loc: loc, now: time.Now}, nil
}

// Fixed returns a calendar whose clock always reports now. Used by tests and batch jobs.
func Fixed(loc *time.Location, now time.Time) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, now: func() time.Time { return now }}
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Today is the current calendar day in the configured zone.
func (c *Calendar) Today() string {
	return c.DayOf(c.now())
}

// DayOf converts an instant to its calendar day in the configured zone.
func (c *Calendar) DayOf(t time.Time) string {
	return t.In(c.loc).Format(Layout)
}

// Parse validates a day string and returns midnight of that day in the configured zone.
func (c *Calendar) Parse(day string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, day, c.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return t, nil
}

// Valid reports whether day is a well-formed YYYY-MM-DD date.
func Valid(day string) bool {
	_, err := time.Parse(Layout, day)
	return err == nil
}

// AddDays shifts a day by n calendar days. Uses date arithmetic, so DST changes do not skew the result.
func AddDays(day string, n int) (string, error) {
	t, err := time.Parse(Layout, day)
	if err != nil {
		return "", ErrInvalidDay
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// Range returns the n days ending at end, oldest first.
func Range(end string, n int) ([]string, error) {
	t, err := time.Parse(Layout, end)
	if err != nil {
		return nil, ErrInvalidDay
	}
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, t.AddDate(0, 0, -i).Format(Layout))
	}
	return days, nil
}
