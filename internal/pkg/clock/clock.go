package clock

import (
	"time"

	"societyhub/internal/domain"
)

// Clock allows injecting time in services.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always returns the same instant (useful for tests).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// Today returns the society-local calendar date of now.
func Today(c Clock, loc *time.Location) string {
	return c.Now().In(loc).Format(domain.DateLayout)
}

// DayBounds returns the UTC instants delimiting the local calendar day
// [start, end) named by date.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(domain.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC(), nil
}

// At combines a local calendar date with a "15:04" wall-clock time.
func At(date string, hhmm string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(domain.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc).UTC(), nil
}

// WallClock parses a "15:04" time of day, single-digit hours included, and
// returns it zero-padded so stored values order correctly as strings.
func WallClock(hhmm string) (string, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}
