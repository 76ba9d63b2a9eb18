package domain

import "time"

// RawSlot is one (day, location text, time window) tuple lifted from a
// schedule page. Times arrive in canonical clock form ("3:30PM", "LATE")
// because each adapter owns its site's time dialect; Location stays free
// text until the resolver maps it. Any field may be empty when the page
// did not state it.
type RawSlot struct {
	Day      string `json:"day"`
	Location string `json:"location"`
	Start    string `json:"start_time"`
	End      string `json:"end_time"`
}

// ScheduleItem is one subject entry extracted from a source's schedule page.
type ScheduleItem struct {
	Name       string    `json:"name"`
	ProfileURL string    `json:"profile_url"`
	Tier       string    `json:"tier,omitempty"`
	Slots      []RawSlot `json:"slots,omitempty"`
}

// ScheduleRow is one resolved availability row ready to persist.
// LocationID always references an existing location; unresolvable free text
// falls back to the source default before a row is built.
type ScheduleRow struct {
	Day        string    `json:"day"`
	Date       time.Time `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	LocationID int64     `json:"location_id"`
}
