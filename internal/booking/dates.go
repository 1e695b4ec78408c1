package booking

import "time"

const (
	// DateLayout is the wire format for calendar dates. No timezone is
	// encoded; both sides agree on a fixed local interpretation.
	DateLayout = "2006-01-02"

	// ClockLayout is the wire format for slot times.
	ClockLayout = "15:04"
)

// DateKey formats t as the wire date string. The time of day is dropped
// first, so two values on the same calendar day always produce equal
// keys regardless of clock time.
func DateKey(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// MonthStart returns midnight on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey is "YYYY-MM". Availability fetches are tagged with it so a
// slow response for a month the user already navigated away from can be
// recognized and discarded.
func MonthKey(t time.Time) string {
	return MonthStart(t).Format("2006-01")
}

func PrevMonth(t time.Time) time.Time { return MonthStart(t).AddDate(0, -1, 0) }

func NextMonth(t time.Time) time.Time { return MonthStart(t).AddDate(0, 1, 0) }

// Index maps date strings to their availability record, built once per
// fetch so each calendar cell resolves in O(1) instead of rescanning
// the slice. The first record wins if the API ever repeats a date.
func Index(dates []AvailableDate) map[string]AvailableDate {
	m := make(map[string]AvailableDate, len(dates))
	for _, d := range dates {
		if _, ok := m[d.Date]; ok {
			continue
		}
		m[d.Date] = d
	}
	return m
}
