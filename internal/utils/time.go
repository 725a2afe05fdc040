package utils

import "time"

// DateLayout is the wire and display format for calendar days
const DateLayout = "2006-01-02"

// Day truncates t to its calendar day at UTC midnight.
// The calendar fields of t are kept as-is, only the clock is dropped.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar day as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar day
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// AddDays shifts a calendar day by n days
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}
