// Package clock supplies the time source and calendar-date helpers used by
// the ledger and report services.
package clock

import (
	"fmt"
	"time"

	bclock "github.com/benbjohnson/clock"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

// System reads the wall clock and reports it in loc.
type System struct {
	base bclock.Clock
	loc  *time.Location
}

func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{base: bclock.New(), loc: loc}
}

func (s *System) Now() time.Time {
	return s.base.Now().In(s.loc)
}

// Mock is a settable clock for tests. Timers created through the embedded
// mock fire as time is moved forward.
type Mock struct {
	*bclock.Mock
}

func NewMock(now time.Time) *Mock {
	m := bclock.NewMock()
	m.Set(now)
	return &Mock{Mock: m}
}

func (m *Mock) Advance(d time.Duration) {
	m.Add(d)
}

// Today is the calendar date of c.Now() in the clock's own location.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// DayBounds returns [start, end) of the calendar date in loc.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, t.AddDate(0, 0, 1), nil
}

// Minutes is the whole-minute duration between start and end, rounded to
// the nearest minute and never negative.
func Minutes(start, end time.Time) int {
	secs := end.Sub(start).Seconds()
	if secs <= 0 {
		return 0
	}
	return int(secs/60 + 0.5)
}
