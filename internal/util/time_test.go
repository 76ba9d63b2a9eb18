package util

import (
	"testing"
	"time"
)

func TestCanonicalDay(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"MON", "Monday", true},
		{"monday", "Monday", true},
		{" Thurs ", "Thursday", true},
		{"TUES", "Tuesday", true},
		{"Funday", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := CanonicalDay(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("CanonicalDay(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNextDateCountsTodayAsMatch(t *testing.T) {
	// 2024-12-02 is a Monday.
	from := time.Date(2024, 12, 2, 15, 0, 0, 0, time.UTC)

	got, ok := NextDate("Monday", from)
	if !ok {
		t.Fatalf("expected Monday to resolve")
	}
	if got.Weekday() != time.Monday {
		t.Fatalf("expected a Monday, got %v", got.Weekday())
	}
	if got.After(from) {
		t.Fatalf("expected today to count as a match, got %v", got)
	}
}

func TestNextDateRollsForward(t *testing.T) {
	from := time.Date(2024, 12, 2, 15, 0, 0, 0, time.UTC)

	got, ok := NextDate("Sunday", from)
	if !ok {
		t.Fatalf("expected Sunday to resolve")
	}
	if got.Weekday() != time.Sunday {
		t.Fatalf("expected a Sunday, got %v", got.Weekday())
	}
	if !got.After(from) {
		t.Fatalf("expected a future date, got %v", got)
	}
	if got.Sub(from) > 7*24*time.Hour {
		t.Fatalf("expected the next occurrence within a week, got %v", got)
	}
}

func TestNextDateRejectsUnknownDay(t *testing.T) {
	if _, ok := NextDate("Someday", time.Now()); ok {
		t.Fatalf("expected unknown day to be rejected")
	}
}
