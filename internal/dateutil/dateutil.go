// Package dateutil provides calendar-date and time-of-day arithmetic on
// the engine's wire formats: YYYY-MM-DD dates and HH:MM times. Date
// functions return errors; the HH:MM helpers fall back to a
// deterministic default on junk input and are safe only because rule
// times are validated before they reach the slot walk.
package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DayOfWeek returns 0 (Sunday) through 6 (Saturday) for a date, using
// Zeller's congruence on the Gregorian calendar.
func DayOfWeek(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	year, month, day := t.Year(), int(t.Month()), t.Day()

	m := month
	y := year
	if month < 3 {
		m += 12
		y--
	}
	q := day
	k := y % 100
	j := y / 100

	h := (q + (13*(m+1))/5 + k + k/4 + j/4 + 5*j) % 7
	// Zeller yields 0=Saturday; shift to 0=Sunday.
	return (h + 6) % 7, nil
}

// AddDays shifts a date by n days (n may be negative).
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// StartOfWeek returns the Monday on or before the given date.
func StartOfWeek(date string) (string, error) {
	dow, err := DayOfWeek(date)
	if err != nil {
		return "", err
	}
	sinceMonday := dow - 1
	if dow == 0 {
		sinceMonday = 6
	}
	return AddDays(date, -sinceMonday)
}

// StartOfMonth returns the first day of the date's month.
func StartOfMonth(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)), nil
}

// EndOfMonth returns the last day of the date's month.
func EndOfMonth(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return FormatDate(firstOfNext.AddDate(0, 0, -1)), nil
}

// TimeToMinutes converts HH:MM to minutes since midnight. Junk input
// yields 0.
func TimeToMinutes(hhmm string) int {
	h, m, ok := splitHHMM(hhmm)
	if !ok {
		return 0
	}
	return h*60 + m
}

// AddMinutes shifts an HH:MM time by n minutes, wrapping modulo 24h.
// Crossing midnight wraps the clock value without touching any date;
// callers keep walks inside a single day. Junk input is returned as-is.
func AddMinutes(hhmm string, n int) string {
	h, m, ok := splitHHMM(hhmm)
	if !ok {
		return hhmm
	}
	total := h*60 + m + n
	total %= 24 * 60
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatTime renders HH:MM as a 12-hour display string. Display only;
// junk input is returned unchanged.
func FormatTime(hhmm string) string {
	h, m, ok := splitHHMM(hhmm)
	if !ok {
		return hhmm
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h
	switch {
	case h == 0:
		display = 12
	case h > 12:
		display = h - 12
	}
	return fmt.Sprintf("%d:%02d %s", display, m, period)
}

func splitHHMM(hhmm string) (int, int, bool) {
	parts := strings.Split(hhmm, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var dayNames = [...]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// MonthName returns the English name for month 1-12, "Unknown" otherwise.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "Unknown"
	}
	return monthNames[month-1]
}

// DayName returns the English name for day 0-6 (0=Sunday), "Unknown" otherwise.
func DayName(day int) string {
	if day < 0 || day > 6 {
		return "Unknown"
	}
	return dayNames[day]
}
