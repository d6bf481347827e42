package models

import (
	"testing"
	"time"
)

func TestParseDueFilter(t *testing.T) {
	for input, want := range map[string]DueFilter{"": DueAny, "Today": DueToday, " week ": DueWeek} {
		got, err := ParseDueFilter(input)
		if err != nil || got != want {
			t.Fatalf("ParseDueFilter(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseDueFilter("month"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

func TestDueFilterMatch(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		filter DueFilter
		date   string
		want   bool
	}{
		{DueAny, "", true},
		{DueToday, "2026-03-14", true},
		{DueToday, "2026-03-15", false},
		{DueToday, "", false},
		{DueWeek, "2026-03-14", true},
		{DueWeek, "2026-03-21", true},
		{DueWeek, "2026-03-22", false},
		{DueWeek, "2026-03-13", false},
		{DueWeek, "soon", false},
	}
	for _, tt := range tests {
		if got := tt.filter.Match(tt.date, now); got != tt.want {
			t.Fatalf("%q.Match(%q) = %v, want %v", tt.filter, tt.date, got, tt.want)
		}
	}
}
