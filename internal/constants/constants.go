package constants

import "time"

// Days in schedule order; adapters and the store use the canonical long
// names, never abbreviations.
var DaysOfWeek = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DayAliases maps the abbreviation spellings seen on schedule pages to
// canonical day names.
var DayAliases = map[string]string{
	"MON":       "Monday",
	"MONDAY":    "Monday",
	"TUE":       "Tuesday",
	"TUES":      "Tuesday",
	"TUESDAY":   "Tuesday",
	"WED":       "Wednesday",
	"WEDNESDAY": "Wednesday",
	"THU":       "Thursday",
	"THUR":      "Thursday",
	"THURS":     "Thursday",
	"THURSDAY":  "Thursday",
	"FRI":       "Friday",
	"FRIDAY":    "Friday",
	"SAT":       "Saturday",
	"SATURDAY":  "Saturday",
	"SUN":       "Sunday",
	"SUNDAY":    "Sunday",
}

// TierKeywords in detection priority order: the longer, more specific
// labels must win over their substrings.
var TierKeywords = []string{
	"PLATINUM VIP",
	"ULTRA VIP",
	"VIP",
	"ELITE",
}

// TagVocabulary is the fixed set of profile keywords promoted to tags.
var TagVocabulary = []string{
	"NEW",
	"BLONDE",
	"BRUNETTE",
	"BUSTY",
	"PETITE",
	"ASIAN",
	"EUROPEAN",
	"LATINA",
}

// OpenEnd is the literal sentinel for schedules with no stated closing time.
const OpenEnd = "LATE"

// DefaultTown / DefaultLabel name the lazily-created fallback location row.
const (
	DefaultTown  = "Unknown"
	DefaultLabel = "unknown"
)

var FetchRetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var StatusConfig = struct {
	KeyPrefix string
	TTL       time.Duration
}{
	KeyPrefix: "castboard:scrape:status:",
	TTL:       24 * time.Hour,
}

var RunnerConfig = struct {
	ProgressLogInterval int
	DedupeByProfileURL  bool
}{
	ProgressLogInterval: 5,
	DedupeByProfileURL:  true,
}
