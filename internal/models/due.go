package models

import (
	"fmt"
	"strings"
	"time"
)

// DueFilter selects items by target release date.
type DueFilter string

const (
	DueAny   DueFilter = ""
	DueToday DueFilter = "today"
	DueWeek  DueFilter = "week"
)

// ParseDueFilter accepts "", "today" or "week" in any case.
func ParseDueFilter(value string) (DueFilter, error) {
	switch filter := DueFilter(strings.ToLower(strings.TrimSpace(value))); filter {
	case DueAny, DueToday, DueWeek:
		return filter, nil
	default:
		return DueAny, fmt.Errorf("invalid due filter %q (expected today or week)", value)
	}
}

// Match reports whether date falls in the window. "today" is the calendar
// day of now, "week" runs from today through seven days later. Items without
// a parseable date only match DueAny.
func (f DueFilter) Match(date string, now time.Time) bool {
	if f == DueAny {
		return true
	}
	due, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return false
	}
	today, _ := time.Parse(DateLayout, now.Format(DateLayout))
	switch f {
	case DueToday:
		return due.Equal(today)
	case DueWeek:
		return !due.Before(today) && !due.After(today.AddDate(0, 0, 7))
	default:
		return false
	}
}
