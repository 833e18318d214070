package schedule

import (
	"time"

	"fitcoach/internal/api"
)

// Day returns t's calendar date as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeeklyOccurrences returns n dates seven days apart, starting on the first weekday on or after today.
func WeeklyOccurrences(today time.Time, weekday time.Weekday, n int) []time.Time {
	start := Day(today)
	offset := (int(weekday) - int(start.Weekday()) + 7) % 7
	start = start.AddDate(0, 0, offset)

	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, 7*i)
	}
	return out
}

// DistinctDates parses YYYY-MM-DD strings, keeping the first occurrence of each date.
func DistinctDates(raw []string) ([]time.Time, error) {
	seen := make(map[time.Time]bool, len(raw))
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := time.Parse(api.DateLayout, s)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}

// StatusOf derives the display status of an occurrence relative to today.
func StatusOf(sp *ScheduledProgram, today time.Time) string {
	if sp.Completed {
		return StatusCompleted
	}
	date, day := Day(sp.ScheduledDate), Day(today)
	switch {
	case date.Before(day):
		return StatusMissed
	case date.Equal(day):
		return StatusToday
	default:
		return StatusUpcoming
	}
}
