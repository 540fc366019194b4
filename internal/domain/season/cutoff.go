// Package season detects season transitions from a month/day cutoff.
package season

import (
	"fmt"
	"time"
)

// Default cutoff: seasons start on October 15.
const (
	DefaultMonth = time.October
	DefaultDay   = 15
)

// Cutoff is the calendar day (year-agnostic) on which a new season starts.
type Cutoff struct {
	Month time.Month
	Day   int
}

// Default returns the October 15 cutoff.
func Default() Cutoff {
	return Cutoff{Month: DefaultMonth, Day: DefaultDay}
}

// New builds and validates a cutoff.
func New(month, day int) (Cutoff, error) {
	c := Cutoff{Month: time.Month(month), Day: day}
	if err := c.Validate(); err != nil {
		return Cutoff{}, err
	}
	return c, nil
}

// Validate checks that the month/day pair exists in a leap year.
func (c Cutoff) Validate() error {
	if c.Month < time.January || c.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidCutoff, c.Month)
	}
	// 2000 is a leap year, so Feb 29 is accepted.
	last := time.Date(2000, c.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if c.Day < 1 || c.Day > last {
		return fmt.Errorf("%w: day %d of %s", ErrInvalidCutoff, c.Day, c.Month)
	}
	return nil
}

// Before reports whether d's month/day falls before the cutoff. The year is ignored.
func (c Cutoff) Before(d time.Time) bool {
	m, day := d.Month(), d.Day()
	return m < c.Month || (m == c.Month && day < c.Day)
}

// Crossed reports whether moving from prev to cur crosses the cutoff:
// prev is before it and cur is on or after it.
func (c Cutoff) Crossed(prev, cur time.Time) bool {
	return c.Before(prev) && !c.Before(cur)
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%02d-%02d", int(c.Month), c.Day)
}
