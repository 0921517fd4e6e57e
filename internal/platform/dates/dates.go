// Package dates holds the pure calendar helpers shared by the timeline and
// asset services: display ranges, local-midnight windows, and the next
// occurrence of a recurring month/day pattern.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const displayLayout = "01/02 15:04"

// TimeRangeString renders a start/end pair as "MM/DD HH:mm ~ MM/DD HH:mm"
// in the local time zone.
func TimeRangeString(start, end time.Time) string {
	return start.Local().Format(displayLayout) + " ~ " + end.Local().Format(displayLayout)
}

// Midnight truncates t to 00:00:00.000 local time.
func Midnight(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// WeekWindow returns the half-open window [today 00:00, today+7d 00:00) in
// local time relative to now.
func WeekWindow(now time.Time) (start, end time.Time) {
	start = Midnight(now)
	return start, start.AddDate(0, 0, 7)
}

// NextOccurrence resolves a recurring "MM/DD" pattern to its next calendar
// occurrence at local midnight, relative to now. A month/day that has already
// passed this year rolls over to next year; today counts as upcoming.
func NextOccurrence(monthDay string, now time.Time) (time.Time, error) {
	month, day, err := parseMonthDay(monthDay)
	if err != nil {
		return time.Time{}, err
	}

	today := Midnight(now)
	occurrence := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, today.Location())
	if occurrence.Before(today) {
		occurrence = time.Date(today.Year()+1, time.Month(month), day, 0, 0, 0, 0, today.Location())
	}
	return occurrence, nil
}

func parseMonthDay(monthDay string) (month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(monthDay), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month/day pattern %q", monthDay)
	}
	month, err = strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month in pattern %q", monthDay)
	}
	day, err = strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("invalid day in pattern %q", monthDay)
	}
	return month, day, nil
}
