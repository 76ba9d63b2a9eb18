package util

import (
	"strings"
	"time"

	"github.com/castboard/scraper/internal/constants"
)

var venueLocation *time.Location

func init() {
	var err error
	venueLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		venueLocation = time.FixedZone("EST", -5*60*60)
	}
}

// NowVenue returns the current time in the venue timezone. Schedule dates
// are resolved against this clock, not UTC.
func NowVenue() time.Time {
	return time.Now().In(venueLocation)
}

// CanonicalDay maps any recognized day spelling ("MON", "Monday", "thurs")
// to its canonical long name. Returns false for anything else.
func CanonicalDay(s string) (string, bool) {
	day, ok := constants.DayAliases[strings.ToUpper(strings.TrimSpace(s))]
	return day, ok
}

func weekdayOf(day string) (time.Weekday, bool) {
	switch day {
	case "Sunday":
		return time.Sunday, true
	case "Monday":
		return time.Monday, true
	case "Tuesday":
		return time.Tuesday, true
	case "Wednesday":
		return time.Wednesday, true
	case "Thursday":
		return time.Thursday, true
	case "Friday":
		return time.Friday, true
	case "Saturday":
		return time.Saturday, true
	}
	return time.Sunday, false
}

// NextDate resolves a canonical day name to the date of its next occurrence
// on or after `from`, at midnight in the venue timezone. Today counts as a
// match: schedules published on Monday list Monday itself.
func NextDate(day string, from time.Time) (time.Time, bool) {
	weekday, ok := weekdayOf(day)
	if !ok {
		return time.Time{}, false
	}

	from = from.In(venueLocation)
	base := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, venueLocation)
	offset := (int(weekday) - int(base.Weekday()) + 7) % 7
	return base.AddDate(0, 0, offset), true
}
