package domain

import "time"

// LocalDay is a calendar day in a specific timezone together with its
// instant bounds. Entries belong to the day when Start <= created_at < End.
type LocalDay struct {
	Date  string
	Start time.Time
	End   time.Time
}

// LocalDayOf resolves the calendar day containing now in loc. End is the
// next local midnight, so 23h and 25h days around DST changes are exact.
func LocalDayOf(now time.Time, loc *time.Location) LocalDay {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return LocalDay{
		Date:  start.Format(DayFormat),
		Start: start,
		End:   start.AddDate(0, 0, 1),
	}
}

// Contains reports whether t falls within the day
func (d LocalDay) Contains(t time.Time) bool {
	return !t.Before(d.Start) && t.Before(d.End)
}
