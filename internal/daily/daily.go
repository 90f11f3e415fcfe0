// Package daily defines what "today" means for the daily puzzle and persists
// finished daily results.
//
// The day rolls over at ResetHour in Location, not at midnight: a game played
// at 09:59 local time still belongs to the previous day's puzzle. Word
// selection, result persistence and leaderboards all use the same Clock.
package daily

import (
	"time"
	_ "time/tzdata" // zone data for minimal containers
)

const dateLayout = "2006-01-02"

// Clock computes day keys ("YYYY-MM-DD") with a fixed daily reset boundary.
type Clock struct {
	Location  *time.Location
	ResetHour int
	Now       func() time.Time
}

// NewClock returns a Clock for the named IANA zone. An empty name means UTC.
func NewClock(zone string, resetHour int) (Clock, error) {
	loc := time.UTC
	if zone != "" {
		var err error
		if loc, err = time.LoadLocation(zone); err != nil {
			return Clock{}, err
		}
	}
	return Clock{Location: loc, ResetHour: resetHour, Now: time.Now}, nil
}

// DateKey returns the puzzle day t belongs to.
func (c Clock) DateKey(t time.Time) string {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	if local.Hour() < c.ResetHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(dateLayout)
}

// Today is DateKey(now).
func (c Clock) Today() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return c.DateKey(now())
}

// MonthKey returns "YYYY-MM" for a day key.
func MonthKey(dateKey string) string {
	if len(dateKey) < 7 {
		return dateKey
	}
	return dateKey[:7]
}

// MonthRange returns the first and last day keys of a "YYYY-MM" month.
func MonthRange(month string) (from, to string, err error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", err
	}
	end := start.AddDate(0, 1, -1)
	return start.Format(dateLayout), end.Format(dateLayout), nil
}

// ValidDateKey reports whether s is a well-formed day key.
func ValidDateKey(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
